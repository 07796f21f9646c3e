package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/salon-scheduling/internal/booking"
	"github.com/hackgods/salon-scheduling/internal/salon"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

func parseUUID(w http.ResponseWriter, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+field, field+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID treats an empty value as uuid.Nil.
func parseOptionalUUID(w http.ResponseWriter, raw, field string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	return parseUUID(w, raw, field)
}

func parseUUIDList(w http.ResponseWriter, raw []string, field string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, ok := parseUUID(w, s, field)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func parseInt(w http.ResponseWriter, raw, field string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+field, field+" must be an integer")
		return 0, false
	}
	return n, true
}

func includeInactive(r *http.Request) bool {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	return all
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, booking.ErrServiceNotProvided):
		writeError(w, http.StatusBadRequest, "service_not_provided", err.Error())
	case errors.Is(err, salon.ErrMasterNotFound):
		writeError(w, http.StatusNotFound, "master_not_found", err.Error())
	case errors.Is(err, salon.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, salon.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "client_not_found", err.Error())
	case errors.Is(err, salon.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, salon.ErrReferenceNotFound):
		writeError(w, http.StatusNotFound, "reference_not_found", err.Error())
	case errors.Is(err, salon.ErrNoSalon):
		writeError(w, http.StatusNotFound, "salon_not_found", err.Error())
	case errors.Is(err, booking.ErrTimeSlotConflict):
		writeError(w, http.StatusConflict, "time_slot_conflict", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrOutsideWorkingHours):
		writeError(w, http.StatusConflict, "outside_working_hours", err.Error())
	case errors.Is(err, booking.ErrMasterInactive):
		writeError(w, http.StatusConflict, "master_inactive", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// Snapshot and maintenance

func snapshotHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Snapshot(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSnapshot(snap))
	}
}

func resetHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(r.Context()); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

func invalidateCacheHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.InvalidateCache()
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// Clients

func upsertClientHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpsertClientRequest
		if !decodeBody(w, r, &req) {
			return
		}

		client, err := svc.UpsertClient(r.Context(), req.FullName, req.Phone)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClient(*client))
	}
}

func clientHistoryHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if strings.TrimSpace(phone) == "" {
			writeError(w, http.StatusBadRequest, "invalid_phone", "phone is required")
			return
		}

		client, appts, err := svc.ClientHistory(r.Context(), phone, r.URL.Query().Get("status"))
		if err != nil {
			handleError(w, err)
			return
		}

		resp := ClientHistoryResponse{Items: mapSlice(appts, toAppointment)}
		if client != nil {
			c := toClient(*client)
			resp.Client = &c
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Availability and appointments

func availabilityHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		masterID, ok := parseUUID(w, q.Get("master_id"), "master_id")
		if !ok {
			return
		}
		duration, ok := parseInt(w, q.Get("duration_min"), "duration_min")
		if !ok {
			return
		}
		step, ok := parseInt(w, q.Get("step_min"), "step_min")
		if !ok {
			return
		}
		var serviceIDs []uuid.UUID
		if raw := q.Get("service_ids"); raw != "" {
			serviceIDs, ok = parseUUIDList(w, strings.Split(raw, ","), "service_ids")
			if !ok {
				return
			}
		}
		if duration == 0 && len(serviceIDs) == 0 {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration_min or service_ids is required")
			return
		}

		query := booking.AvailabilityQuery{
			MasterID:    masterID,
			Date:        q.Get("date"),
			DurationMin: duration,
			ServiceIDs:  serviceIDs,
			StepMin:     step,
		}
		res, err := svc.AvailableSlots(r.Context(), query)
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			MasterID:    masterID,
			Date:        query.Date,
			DurationMin: res.DurationMin,
			StepMin:     res.StepMin,
			FromCache:   res.FromCache,
			Slots:       res.Slots,
		})
	}
}

func createAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		clientID, ok := parseUUID(w, req.ClientID, "client_id")
		if !ok {
			return
		}
		masterID, ok := parseUUID(w, req.MasterID, "master_id")
		if !ok {
			return
		}
		serviceIDs, ok := parseUUIDList(w, req.ServiceIDs, "service_ids")
		if !ok {
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), booking.CreateAppointmentInput{
			ClientID:   clientID,
			MasterID:   masterID,
			StartDT:    req.StartDT,
			EndDT:      req.EndDT,
			Comment:    req.Comment,
			ServiceIDs: serviceIDs,
		})
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointment(*appt))
	}
}

func setAppointmentStatusHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "appointment_id")
		if !ok {
			return
		}
		var req SetStatusRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := svc.SetAppointmentStatus(r.Context(), id, salon.AppointmentStatus(req.Status)); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: req.Status})
	}
}

func masterScheduleHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		masterID, ok := parseUUID(w, chi.URLParam(r, "id"), "master_id")
		if !ok {
			return
		}
		from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
		if to == "" {
			to = from
		}

		appts, err := svc.MasterSchedule(r.Context(), masterID, from, to)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(appts, toAppointment))
	}
}

// Masters

func listMastersHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		masters, err := svc.ListMasters(r.Context(), includeInactive(r))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(masters, toMaster))
	}
}

func createMasterHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMasterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		salonID, ok := parseOptionalUUID(w, req.SalonID, "salon_id")
		if !ok {
			return
		}

		m, err := svc.CreateMaster(r.Context(), salon.Master{
			SalonID:        salonID,
			FullName:       req.FullName,
			Specialization: req.Specialization,
			Phone:          req.Phone,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMaster(*m))
	}
}

func toggleMasterHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "master_id")
		if !ok {
			return
		}
		if err := svc.ToggleMasterActive(r.Context(), id); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

func deleteMasterHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "master_id")
		if !ok {
			return
		}
		if err := svc.DeleteMaster(r.Context(), id); err != nil {
			handleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func masterServicesHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "master_id")
		if !ok {
			return
		}
		services, err := svc.ListServicesByMaster(r.Context(), id)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(services, toService))
	}
}

// Services

func listServicesHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := svc.ListServices(r.Context(), includeInactive(r))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(services, toService))
	}
}

func createServiceHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateServiceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		salonID, ok := parseOptionalUUID(w, req.SalonID, "salon_id")
		if !ok {
			return
		}

		s, err := svc.CreateService(r.Context(), salon.Service{
			SalonID:     salonID,
			Name:        req.Name,
			DurationMin: req.DurationMin,
			Price:       req.Price,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toService(*s))
	}
}

func toggleServiceHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "service_id")
		if !ok {
			return
		}
		if err := svc.ToggleServiceActive(r.Context(), id); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

func deleteServiceHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUID(w, chi.URLParam(r, "id"), "service_id")
		if !ok {
			return
		}
		if err := svc.DeleteService(r.Context(), id); err != nil {
			handleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setMasterServiceHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MasterServiceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		masterID, ok := parseUUID(w, req.MasterID, "master_id")
		if !ok {
			return
		}
		serviceID, ok := parseUUID(w, req.ServiceID, "service_id")
		if !ok {
			return
		}

		if err := svc.SetMasterService(r.Context(), masterID, serviceID, req.Enabled); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// Working hours

func upsertWorkingSlotHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WorkingSlotRequest
		if !decodeBody(w, r, &req) {
			return
		}
		masterID, ok := parseUUID(w, req.MasterID, "master_id")
		if !ok {
			return
		}

		ws, err := svc.UpsertWorkingSlot(r.Context(), booking.WorkingSlotInput{
			MasterID:  masterID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			IsDayOff:  req.IsDayOff,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWorkingSlot(*ws))
	}
}
