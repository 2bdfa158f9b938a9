package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dentelia/dentelia_backend/internal/api/http/middleware"
	"github.com/dentelia/dentelia_backend/internal/model"
	"github.com/dentelia/dentelia_backend/internal/service/record"
)

type PatientHandler struct {
	svc record.Service
}

func NewPatientHandler(svc record.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapRecordError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, record.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, record.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, record.ErrRecordNotFound),
		errors.Is(err, record.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, record.ErrInvalidTransition),
		errors.Is(err, record.ErrSlotTaken),
		errors.Is(err, record.ErrConflict),
		errors.Is(err, record.ErrInvalidMutation),
		errors.Is(err, record.ErrAlreadyRegistered):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// requestActor converts the gateway-supplied actor into the service DTO.
func requestActor(c fiber.Ctx) (record.Actor, bool) {
	a, ok := middleware.ActorFromFiber(c)
	if !ok {
		return record.Actor{}, false
	}
	return record.Actor{ID: a.ID, Role: model.Role(a.Role)}, true
}

// ownRecord reports whether the actor may touch the given patient's
// record: clinicians may touch any, patients only their own.
func ownRecord(actor record.Actor, patientID string) bool {
	return actor.Role != model.RolePatient || actor.ID == patientID
}

// POST /patients
func (h *PatientHandler) Register(c fiber.Ctx) error {
	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientID   string `json:"patient_id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		DateOfBirth string `json:"date_of_birth"`
		Address     string `json:"address"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !ownRecord(actor, body.PatientID) {
		return forbidden(c, "patients may only register their own record")
	}

	rec, err := h.svc.Register(c.Context(), record.RegisterRequest{
		PatientID: body.PatientID,
		Profile: model.Profile{
			DisplayName: body.DisplayName,
			Email:       body.Email,
			PhoneNumber: body.PhoneNumber,
			DateOfBirth: body.DateOfBirth,
			Address:     body.Address,
			Role:        model.RolePatient,
		},
	})
	if err != nil {
		return mapRecordError(c, err)
	}

	return created(c, rec)
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	recs, err := h.svc.ListPatients(c.Context())
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, recs)
}

// GET /patients/:id/record
func (h *PatientHandler) GetRecord(c fiber.Ctx) error {
	patientID := c.Params("id")

	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}
	if !ownRecord(actor, patientID) {
		return forbidden(c, "patients may only access their own record")
	}

	rec, err := h.svc.Get(c.Context(), patientID)
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, rec)
}

// POST /patients/:id/appointments
func (h *PatientHandler) CreateAppointment(c fiber.Ctx) error {
	patientID := c.Params("id")

	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}
	if !ownRecord(actor, patientID) {
		return forbidden(c, "patients may only book on their own record")
	}

	var body struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Reason string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rec, err := h.svc.CreateAppointment(c.Context(), actor, record.CreateAppointmentRequest{
		PatientID: patientID,
		Date:      body.Date,
		Time:      body.Time,
		Reason:    body.Reason,
	})
	if err != nil {
		return mapRecordError(c, err)
	}

	return created(c, rec)
}

// PATCH /patients/:id/appointments/:appointmentId/status
func (h *PatientHandler) ChangeStatus(c fiber.Ctx) error {
	patientID := c.Params("id")

	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}
	if !ownRecord(actor, patientID) {
		return forbidden(c, "patients may only modify their own record")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rec, err := h.svc.ChangeStatus(c.Context(), actor, record.ChangeStatusRequest{
		PatientID:     patientID,
		AppointmentID: c.Params("appointmentId"),
		NewStatus:     model.Status(body.Status),
	})
	if err != nil {
		return mapRecordError(c, err)
	}

	return ok(c, rec)
}

// PATCH /patients/:id/appointments/:appointmentId/notes
func (h *PatientHandler) SetNotes(c fiber.Ctx) error {
	patientID := c.Params("id")

	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rec, err := h.svc.SetNotes(c.Context(), actor, record.SetNotesRequest{
		PatientID:     patientID,
		AppointmentID: c.Params("appointmentId"),
		Notes:         body.Notes,
	})
	if err != nil {
		return mapRecordError(c, err)
	}

	return ok(c, rec)
}

// POST /patients/:id/history
func (h *PatientHandler) AppendHistory(c fiber.Ctx) error {
	patientID := c.Params("id")

	actor, valid := requestActor(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rec, err := h.svc.AppendHistory(c.Context(), actor, record.AppendHistoryRequest{
		PatientID: patientID,
		Note:      body.Note,
	})
	if err != nil {
		return mapRecordError(c, err)
	}

	return created(c, rec)
}
