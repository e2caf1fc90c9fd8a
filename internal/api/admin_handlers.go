package api

import (
	"bytes"
	"fmt"
	"net/http"

	"carcare/internal/admin"
	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/service"

	"github.com/julienschmidt/httprouter"
)

type adminBookingsResponse struct {
	Items  []bookingView `json:"items"`
	Counts admin.Counts  `json:"counts"`
}

func (s *HTTPServer) adminView(r *http.Request) (admin.BookingView, error) {
	q, err := admin.ParseQuery(r.URL.Query().Get("status"), r.URL.Query().Get("search"))
	if err != nil {
		return admin.BookingView{}, err
	}
	all, err := s.deps.Bookings.AllBookings(r.Context(), domain.BookingFilter{})
	if err != nil {
		return admin.BookingView{}, err
	}
	return admin.FilterBookings(all, q), nil
}

func (s *HTTPServer) adminListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ string) {
	view, err := s.adminView(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, adminBookingsResponse{
		Items:  s.views(view.Items, models.ActorAdmin),
		Counts: view.Counts,
	})
}

func (s *HTTPServer) adminExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ string) {
	view, err := s.adminView(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now()
	var buf bytes.Buffer
	if err := admin.ExportBookingsXLSX(&buf, view, now); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", admin.ExportFileName(now)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) adminShareText(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) {
	b, err := s.deps.Bookings.GetBooking(r.Context(), userID, ps.ByName("id"), true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"text": models.ShareText(b)})
}

func (s *HTTPServer) adminConfirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	b, err := s.deps.Bookings.Confirm(r.Context(), ps.ByName("id"))
	s.writeAdminBooking(w, r, b, err)
}

func (s *HTTPServer) adminComplete(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	b, err := s.deps.Bookings.Complete(r.Context(), ps.ByName("id"))
	s.writeAdminBooking(w, r, b, err)
}

func (s *HTTPServer) adminReschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	var req service.RescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.deps.Bookings.AdminReschedule(r.Context(), ps.ByName("id"), req.PreferredDateTime)
	s.writeAdminBooking(w, r, b, err)
}

func (s *HTTPServer) writeAdminBooking(w http.ResponseWriter, r *http.Request, b *models.Booking, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.view(b, models.ActorAdmin))
}

func (s *HTTPServer) adminListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ string) {
	profiles, err := s.deps.Users.ListProfiles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, admin.FilterProfiles(profiles, r.URL.Query().Get("search")))
}

func (s *HTTPServer) adminUserBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	list, err := s.deps.Bookings.UserBookings(r.Context(), ps.ByName("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.views(list, models.ActorAdmin))
}

func (s *HTTPServer) adminUserAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	ctx := r.Context()
	id := ps.ByName("id")

	var err error
	switch ps.ByName("action") {
	case "verify":
		err = s.deps.Users.VerifyUser(ctx, id)
	case "unverify":
		err = s.deps.Users.UnverifyUser(ctx, id)
	case "block":
		err = s.deps.Users.BlockUser(ctx, id)
	case "unblock":
		err = s.deps.Users.UnblockUser(ctx, id)
	case "reset-password":
		var req service.ResetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		err = s.deps.Users.ResetPassword(ctx, id, req.Password)
	default:
		writeFailure(w, http.StatusNotFound, "unknown user action")
		return
	}

	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w)
}

type priceRequest struct {
	PriceSedan     int64 `json:"price_sedan"`
	PriceHatchback int64 `json:"price_hatchback"`
	PriceSUV       int64 `json:"price_suv"`
	PriceLuxury    int64 `json:"price_luxury"`
}

func (s *HTTPServer) adminUpdatePrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ string) {
	var req priceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := &models.ServicePrice{
		ServiceID:      ps.ByName("service_id"),
		PriceSedan:     req.PriceSedan,
		PriceHatchback: req.PriceHatchback,
		PriceSUV:       req.PriceSUV,
		PriceLuxury:    req.PriceLuxury,
	}
	if err := s.deps.Prices.UpdatePrice(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}
