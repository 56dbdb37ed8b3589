package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/markdown"
)

const failedTicketUpdate = "Failed to update ticket"

// ticketView is a ticket with its description rendered for the modal
type ticketView struct {
	*model.Ticket
	DescriptionHTML string `json:"description_html"`
}

func newTicketView(t *model.Ticket) *ticketView {
	if t == nil {
		return nil
	}
	v := &ticketView{Ticket: t}
	if t.Description != "" {
		v.DescriptionHTML = markdown.ToHTML(t.Description)
	}
	return v
}

func newTicketViews(tickets []*model.Ticket) []*ticketView {
	views := make([]*ticketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, newTicketView(t))
	}
	return views
}

type columnView struct {
	Status  types.TicketStatus `json:"status"`
	Label   string             `json:"label"`
	Tickets []*ticketView      `json:"tickets"`
}

type moveRequest struct {
	Status types.TicketStatus `json:"status"`
}

func kanbanBoardHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		columns, err := kanban.Board(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}

		views := make([]columnView, len(columns))
		for i, c := range columns {
			views[i] = columnView{Status: c.Status, Label: c.Label, Tickets: newTicketViews(c.Tickets)}
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"columns": views})
	}
}

func listTicketsHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := kanban.Tickets(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"tickets": newTicketViews(tickets)})
	}
}

func getTicketHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := kanban.Ticket(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newTicketView(ticket))
	}
}

func createTicketHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.TicketInput
		if !decodeJSON(w, r, &input) {
			return
		}

		ticket, err := kanban.Create(r.Context(), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, newTicketView(ticket))
	}
}

func updateTicketHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.TicketInput
		if !decodeJSON(w, r, &input) {
			return
		}

		result, err := kanban.Update(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeResult(r.Context(), w, result.Outcome, newTicketView(result.Record), result.Reason, failedTicketUpdate)
	}
}

func moveTicketHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		result, err := kanban.Move(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeResult(r.Context(), w, result.Outcome, newTicketView(result.Record), result.Reason, failedTicketUpdate)
	}
}

func deleteTicketHandler(kanban *usecase.KanbanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := kanban.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
