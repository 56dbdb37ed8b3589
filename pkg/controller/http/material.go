package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
)

// maxUploadSize bounds multipart uploads
const maxUploadSize = 50 << 20

// readUpload parses the multipart form and hands the "file" part to fn. The
// part is closed when fn returns.
func readUpload(w http.ResponseWriter, r *http.Request, fn func(f usecase.Upload) error) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid multipart form", goerr.V("cause", err.Error()))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "file is required", goerr.V("cause", err.Error()))
	}
	defer safe.Close(r.Context(), file)

	return fn(usecase.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
}

// listMaterialsHandler lists all materials, or those of ?card=
func listMaterialsHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			views []*usecase.MaterialView
			err   error
		)
		if card := r.URL.Query().Get("card"); card != "" {
			views, err = material.ListByCard(r.Context(), card)
		} else {
			views, err = material.List(r.Context())
		}
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"materials": views})
	}
}

func uploadMaterialHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view *usecase.MaterialView
		err := readUpload(w, r, func(f usecase.Upload) error {
			var err error
			view, err = material.Upload(r.Context(), r.FormValue("card_key"), f)
			return err
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, view)
	}
}

func deleteMaterialHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := material.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getCVHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cv, err := material.GetCV(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, cv)
	}
}

func uploadCVHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cv *model.BlobObject
		err := readUpload(w, r, func(f usecase.Upload) error {
			var err error
			cv, err = material.UploadCV(r.Context(), f)
			return err
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, cv)
	}
}

func deleteCVHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := material.DeleteCV(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listSlidesHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slides, err := material.ListSlides(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"slides": slides})
	}
}

func uploadSlidesHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view *usecase.SlideView
		err := readUpload(w, r, func(f usecase.Upload) error {
			var err error
			view, err = material.UploadSlides(r.Context(), chi.URLParam(r, "key"), f)
			return err
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, view)
	}
}

func deleteSlidesHandler(material *usecase.MaterialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := material.DeleteSlides(r.Context(), chi.URLParam(r, "key")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
