package http

import (
	"net/http"

	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

type chatRequest struct {
	Messages []model.ChatTurn `json:"messages"`
}

type option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type configResponse struct {
	Statuses   []option `json:"statuses"`
	Pillars    []option `json:"pillars"`
	Steps      []string `json:"steps"`
	Efforts    []string `json:"efforts"`
	Priorities []string `json:"priorities"`
	Roles      []string `json:"roles"`
	Cards      []option `json:"cards"`
	Talks      []option `json:"talks"`
}

func analyticsHandler(analytics *usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := analytics.Dashboard(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, d)
	}
}

func chatHandler(chat *usecase.ChatUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		reply, err := chat.Ask(r.Context(), req.Messages)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, reply)
	}
}

// configHandler exposes the board and calendar vocabulary the client renders
func configHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := uc.AppConfig()
		resp := configResponse{
			Priorities: []string{
				types.PriorityLow.String(),
				types.PriorityMedium.String(),
				types.PriorityHigh.String(),
			},
			Roles: append([]string{}, app.Board.Roles...),
		}
		for _, s := range types.AllTicketStatuses() {
			resp.Statuses = append(resp.Statuses, option{Key: s.String(), Label: s.Label()})
		}
		for _, p := range uc.Calendar.Pillars() {
			resp.Pillars = append(resp.Pillars, option{Key: p.String(), Label: p.Label()})
		}
		for _, s := range types.AllProgressSteps() {
			resp.Steps = append(resp.Steps, s.String())
		}
		for _, e := range types.AllEfforts() {
			resp.Efforts = append(resp.Efforts, e.String())
		}
		for _, c := range app.Cards {
			resp.Cards = append(resp.Cards, option{Key: c.Key, Label: c.Title})
		}
		for _, t := range app.Talks {
			resp.Talks = append(resp.Talks, option{Key: t.Key, Label: t.Title})
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
