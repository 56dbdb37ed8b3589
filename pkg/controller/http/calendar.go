package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

type rescheduleRequest struct {
	Date types.Date `json:"date"`
}

type progressRequest struct {
	Step    types.ProgressStep `json:"step"`
	Checked bool               `json:"checked"`
}

func listItemsHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := calendar.Items(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": items})
	}
}

func getItemHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := calendar.Item(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, item)
	}
}

func createItemHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.ContentItemInput
		if !decodeJSON(w, r, &input) {
			return
		}

		item, err := calendar.Create(r.Context(), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, item)
	}
}

func saveItemHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.ContentItemInput
		if !decodeJSON(w, r, &input) {
			return
		}

		result, err := calendar.Save(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeResult(r.Context(), w, result.Outcome, result.Record, result.Reason, "Update failed")
	}
}

func deleteItemHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := calendar.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func rescheduleItemHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rescheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := calendar.Reschedule(r.Context(), chi.URLParam(r, "id"), req.Date)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeResult(r.Context(), w, result.Outcome, result.Record, result.Reason, "Reschedule failed")
	}
}

func toggleProgressHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req progressRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		result, err := calendar.ToggleStep(r.Context(), chi.URLParam(r, "id"), req.Step, req.Checked)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeResult(r.Context(), w, result.Outcome, result.Record, result.Reason, "Update failed")
	}
}

// yearMonth reads ?year= and ?month=, defaulting to the current month
func yearMonth(r *http.Request, today types.Date) (int, int, error) {
	year, month := today.Time().Year(), int(today.Time().Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, goerr.Wrap(usecase.ErrInvalidInput, "year must be a number", goerr.V("year", v))
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, goerr.Wrap(usecase.ErrInvalidInput, "month must be a number", goerr.V("month", v))
		}
		month = n
	}
	return year, month, nil
}

func monthHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := yearMonth(r, calendar.Today())
		if err != nil {
			handleError(w, r, err)
			return
		}

		view, err := calendar.Month(r.Context(), year, month)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, view)
	}
}

func weekHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := yearMonth(r, calendar.Today())
		if err != nil {
			handleError(w, r, err)
			return
		}

		view, err := calendar.Week(r.Context(), year, month)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, view)
	}
}

// draftHandler returns the pre-filled form for ?date=, or an undated draft
func draftHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := types.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid date", goerr.V("date", r.URL.Query().Get("date"))))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, calendar.Draft(date))
	}
}

func summaryHandler(calendar *usecase.CalendarUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := calendar.Summary(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, summary)
	}
}
