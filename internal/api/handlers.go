package api

import (
	"net/http"
	"strings"

	"carcare/internal/lifecycle"
	"carcare/internal/models"
	"carcare/internal/service"

	"github.com/julienschmidt/httprouter"
)

// bookingView is a booking plus what the dashboards render for it.
type bookingView struct {
	*models.Booking
	StatusLabel            string            `json:"status_label"`
	StatusColor            string            `json:"status_color"`
	AmountLabel            string            `json:"amount_label"`
	PaymentLabel           string            `json:"payment_label"`
	RescheduleNote         string            `json:"reschedule_note,omitempty"`
	WindowRemainingSeconds int64             `json:"window_remaining_seconds"`
	Actions                []lifecycle.Event `json:"actions"`
}

func (s *HTTPServer) view(b *models.Booking, actor models.Actor) bookingView {
	actions := s.deps.Bookings.Actions(b, actor)
	if actions == nil {
		actions = []lifecycle.Event{}
	}
	return bookingView{
		Booking:                b,
		StatusLabel:            models.StatusLabel(b.Status),
		StatusColor:            models.StatusColor(b.Status),
		AmountLabel:            models.AmountLabel(b.TotalAmount),
		PaymentLabel:           models.PaymentLabel(b.Status),
		RescheduleNote:         models.RescheduleNote(b.Status),
		WindowRemainingSeconds: int64(s.deps.Bookings.WindowRemaining(b).Seconds()),
		Actions:                actions,
	}
}

func (s *HTTPServer) views(list []*models.Booking, actor models.Actor) []bookingView {
	out := make([]bookingView, 0, len(list))
	for _, b := range list {
		out = append(out, s.view(b, actor))
	}
	return out
}

func (s *HTTPServer) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) listServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		writeData(w, http.StatusOK, s.deps.Catalog.ByCategory(models.ServiceCategory(category)))
		return
	}
	writeData(w, http.StatusOK, s.deps.Catalog.All())
}

func (s *HTTPServer) listPrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	prices, err := s.deps.Prices.ListPrices(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, prices)
}

type quoteRequest struct {
	ServiceIDs  []string `json:"service_ids"`
	VehicleType string   `json:"vehicle_type"`
}

type quoteResponse struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label"`
	Quoted bool   `json:"quoted"`
}

func (s *HTTPServer) quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := s.deps.Prices.Quote(r.Context(), req.ServiceIDs, req.VehicleType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, quoteResponse{
		Amount: price.Amount,
		Label:  models.AmountLabel(price.Amount),
		Quoted: price.Quoted(),
	})
}

func (s *HTTPServer) getProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) {
	p, err := s.deps.Users.GetProfile(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

type profileRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	AddressLine1    string `json:"address_line1"`
	AddressLine2    string `json:"address_line2"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`
	LocationAddress string `json:"location_address"`
}

func (s *HTTPServer) putProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := &models.Profile{
		ID:              userID,
		FullName:        strings.TrimSpace(req.FullName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		AddressLine1:    strings.TrimSpace(req.AddressLine1),
		AddressLine2:    strings.TrimSpace(req.AddressLine2),
		City:            strings.TrimSpace(req.City),
		State:           strings.TrimSpace(req.State),
		Pincode:         strings.TrimSpace(req.Pincode),
		LocationAddress: strings.TrimSpace(req.LocationAddress),
	}
	if err := s.deps.Users.SaveProfile(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.deps.Users.GetProfile(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, saved)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) {
	list, err := s.deps.Bookings.UserBookings(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.views(list, models.ActorUser))
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) {
	var req service.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.deps.Bookings.CreateBooking(r.Context(), userID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, s.view(b, models.ActorUser))
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) {
	b, err := s.deps.Bookings.GetBooking(r.Context(), userID, ps.ByName("id"), false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.view(b, models.ActorUser))
}

func (s *HTTPServer) rescheduleBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) {
	var req service.RescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.deps.Bookings.Reschedule(r.Context(), userID, ps.ByName("id"), req.PreferredDateTime)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.view(b, models.ActorUser))
}

func (s *HTTPServer) cancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) {
	b, err := s.deps.Bookings.Cancel(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": b.ID})
}
