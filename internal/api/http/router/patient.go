package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentelia/dentelia_backend/internal/api/http/handler"
	"github.com/dentelia/dentelia_backend/internal/api/http/middleware"
	"github.com/dentelia/dentelia_backend/internal/model"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	authRequired fiber.Handler,
) {
	doctorOnly := middleware.RequireRole(model.RoleDoctor)

	patients := api.Group("/patients", authRequired)

	// Registration and the clinician roster
	patients.Post("/", ph.Register)
	patients.Get("/", doctorOnly, ph.List)

	p := patients.Group("/:id")
	p.Get("/record", ph.GetRecord)

	// Appointments
	p.Post("/appointments", ph.CreateAppointment)
	p.Patch("/appointments/:appointmentId/status", ph.ChangeStatus)
	p.Patch("/appointments/:appointmentId/notes", doctorOnly, ph.SetNotes)

	// Medical history
	p.Post("/history", doctorOnly, ph.AppendHistory)
}
