package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the portal routes. The sign-in pair sits outside the
// staff gate; everything else requires a staff token when auth is on.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireStaff(h.opts.AuthEnabled, h.opts.AuthToken))

		r.Get("/", h.Portal)

		r.Post("/save/record", h.SaveRecord)
		r.Post("/save/project", h.SaveProject)
		r.Post("/save/employee", h.SaveEmployee)
		r.Post("/save/training", h.SaveTraining)
		r.Post("/save/checklist", h.SaveChecklist)
		r.Post("/save/profile", h.SaveProfile)

		r.Get("/delete", h.Delete)
		r.Get("/export", h.Export)

		r.Get("/attachments/{id}", h.ServeAttachment)
		r.Get("/library/{name}", h.ServeLibrary)
	})

	return r
}
