package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"carrental/internal/models"
	"carrental/internal/service"
)

type createBookingRequest struct {
	CarID     int64  `json:"carId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type paymentRequest struct {
	PaymentSuccess bool `json:"paymentSuccess"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.CarID <= 0 || strings.TrimSpace(body.StartDate) == "" || strings.TrimSpace(body.EndDate) == "" {
		writeError(w, http.StatusBadRequest, "carId, startDate and endDate are required")
		return
	}

	start, err := service.ParseBookingDate(body.StartDate)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	end, err := service.ParseBookingDate(body.EndDate)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}

	booking, err := s.deps.Bookings.CreateBooking(r.Context(), caller(r), service.CreateBookingInput{
		CarID:     body.CarID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body paymentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	booking, err := s.deps.Bookings.ProcessPayment(r.Context(), caller(r), id, body.PaymentSuccess)
	if err != nil {
		s.writeServiceError(w, r, err, "Booking")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := s.deps.Bookings.CancelBooking(r.Context(), caller(r), id)
	if err != nil {
		s.writeServiceError(w, r, err, "Booking")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCustomerBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Query.ListByCustomer(r.Context(), caller(r).UserID)
	if err != nil {
		s.writeServiceError(w, r, err, "Booking")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Query.ListByOwner(r.Context(), caller(r).UserID)
	if err != nil {
		s.writeServiceError(w, r, err, "Booking")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.CarFilter{Type: strings.TrimSpace(q.Get("type"))}

	var err error
	if filter.MinPrice, err = queryFloat(q.Get("minPrice")); err != nil {
		writeError(w, http.StatusBadRequest, "minPrice must be a number")
		return
	}
	if filter.MaxPrice, err = queryFloat(q.Get("maxPrice")); err != nil {
		writeError(w, http.StatusBadRequest, "maxPrice must be a number")
		return
	}

	cars, err := s.deps.Cars.ListAvailableCars(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (s *HTTPServer) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var body service.CarInput
	if !decodeBody(w, r, &body) {
		return
	}

	car, err := s.deps.Cars.CreateCar(r.Context(), caller(r), body)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (s *HTTPServer) handleOwnerCars(w http.ResponseWriter, r *http.Request) {
	cars, err := s.deps.Cars.ListOwnerCars(r.Context(), caller(r))
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (s *HTTPServer) handleGetCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	car, err := s.deps.Cars.GetCar(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *HTTPServer) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch models.CarPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	car, err := s.deps.Cars.UpdateCar(r.Context(), caller(r), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *HTTPServer) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Cars.DeleteCar(r.Context(), caller(r), id); err != nil {
		s.writeServiceError(w, r, err, "Car")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Car removed"})
}

// writeServiceError maps service errors to statuses. resource names the entity in
// not-found messages.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, service.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "Invalid date range")
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusBadRequest, "Car is not available for booking")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "Booking cannot be cancelled")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "Booking was modified concurrently, please retry")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().
			Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, msgServerError)
	}
}

func caller(r *http.Request) models.Identity {
	id, _ := IdentityFromContext(r.Context())
	return id
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// decodeBody treats an empty body as an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func queryFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
