package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/service"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/util"
)

type DonationHandler struct {
	donations *service.DonationService
}

func RegisterDonations(e *echo.Echo, auth *service.AuthService, donations *service.DonationService) {
	handler := &DonationHandler{donations: donations}

	public := e.Group("/api/v1/donations")
	public.GET("/pending", handler.listPending)
	public.GET("/pending/all", handler.listAllPending)
	public.GET("/:id", handler.get)
	public.GET("/:id/status", handler.checkStatus)

	protected := e.Group("/api/v1/donations", RequireAuth(auth))
	protected.POST("", handler.create)
	protected.POST("/:id/claim", handler.claim)
	protected.POST("/:id/verify", handler.verify)
	protected.POST("/:id/reject", handler.reject)
	protected.POST("/:id/otp/resend", handler.resendOTP)

	me := e.Group("/api/v1/users/me", RequireAuth(auth))
	me.GET("/donations", handler.listMine)
	me.GET("/pickups", handler.listPickups)
}

func (h *DonationHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid donation payload"))
	}

	input := service.CreateDonationInput{
		Kind:     domain.DonationKind(req.Kind),
		Location: req.Location,
	}
	if req.Food != nil {
		input.Food = &domain.FoodDetails{
			FoodType:     req.Food.FoodType,
			Quantity:     req.Food.Quantity,
			Price:        req.Food.Price,
			ProviderType: req.Food.ProviderType,
		}
	}
	if req.Clothes != nil {
		input.Clothes = &domain.ClothesDetails{
			ClothType: req.Clothes.ClothType,
			Quantity:  req.Clothes.Quantity,
			Condition: req.Clothes.Condition,
		}
	}

	donation, err := h.donations.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrDonationValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create donation"))
	}

	otp := ""
	if donation.OTP != nil {
		otp = *donation.OTP
	}
	return c.JSON(http.StatusCreated, util.Envelope{
		"donation": toDonationResponse(donation),
		"otp":      otp,
	})
}

func (h *DonationHandler) listPending(c echo.Context) error {
	kind := domain.DonationKind(strings.TrimSpace(c.QueryParam("kind")))
	donations, err := h.donations.ListPending(c.Request().Context(), kind)
	if err != nil {
		if errors.Is(err, service.ErrDonationValidation) {
			return c.JSON(http.StatusBadRequest, util.Error("kind must be food or clothes"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not list donations"))
	}
	return c.JSON(http.StatusOK, util.Data("donations", toDonationResponses(donations)))
}

func (h *DonationHandler) listAllPending(c echo.Context) error {
	summaries, err := h.donations.ListAllPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list donations"))
	}
	return c.JSON(http.StatusOK, util.Data("donations", summaries))
}

func (h *DonationHandler) get(c echo.Context) error {
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	donation, err := h.donations.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDonationNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load donation"))
	}
	return c.JSON(http.StatusOK, util.Data("donation", toDonationResponse(donation)))
}

func (h *DonationHandler) checkStatus(c echo.Context) error {
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	status, err := h.donations.CheckStatus(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDonationNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not check status"))
	}
	return c.JSON(http.StatusOK, util.Data("status", status))
}

func (h *DonationHandler) claim(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	otp, err := h.donations.Claim(c.Request().Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDonationNotFound):
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		case errors.Is(err, service.ErrDonationAlreadyClaimed):
			return c.JSON(http.StatusConflict, util.Error("donation already taken"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not claim donation"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("otp", otp))
}

func (h *DonationHandler) verify(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	var req VerifyHandoffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("code is required"))
	}

	kind, err := h.donations.Verify(c.Request().Context(), id, user.ID, strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDonationNotFound):
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		case errors.Is(err, service.ErrHandoffNotAllowed):
			return c.JSON(http.StatusForbidden, util.Error("handoff not allowed"))
		case errors.Is(err, service.ErrOTPExpired):
			return c.JSON(http.StatusGone, util.Error("handoff code expired"))
		case errors.Is(err, service.ErrInvalidOTP):
			return c.JSON(http.StatusUnprocessableEntity, util.Error("handoff code does not match"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not verify handoff"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("kind", kind))
}

func (h *DonationHandler) reject(c echo.Context) error {
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	var req RejectDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("reason is required"))
	}

	if _, err := h.donations.Reject(c.Request().Context(), id, req.Reason); err != nil {
		switch {
		case errors.Is(err, service.ErrDonationNotFound):
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		case errors.Is(err, service.ErrDonationTerminal):
			return c.JSON(http.StatusConflict, util.Error("donation already completed or rejected"))
		case errors.Is(err, service.ErrDonationValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reject donation"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("donation rejected"))
}

func (h *DonationHandler) resendOTP(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseDonationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	donation, err := h.donations.ReissueOTP(c.Request().Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDonationNotFound):
			return c.JSON(http.StatusNotFound, util.Error("donation not found"))
		case errors.Is(err, service.ErrHandoffNotAllowed):
			return c.JSON(http.StatusForbidden, util.Error("only the requester can resend the code"))
		case errors.Is(err, service.ErrDonationTerminal):
			return c.JSON(http.StatusConflict, util.Error("donation already completed or rejected"))
		case errors.Is(err, service.ErrOTPResendTooSoon):
			return c.JSON(http.StatusTooManyRequests, util.Error("please wait before requesting a new code"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not resend code"))
		}
	}

	otp := ""
	if donation.OTP != nil {
		otp = *donation.OTP
	}
	return c.JSON(http.StatusOK, util.Data("otp", otp))
}

func (h *DonationHandler) listMine(c echo.Context) error {
	return h.listHistory(c, h.donations.ListByRequester)
}

func (h *DonationHandler) listPickups(c echo.Context) error {
	return h.listHistory(c, h.donations.ListByClaimant)
}

func (h *DonationHandler) listHistory(c echo.Context, list func(ctx context.Context, userID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error)) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	filter := domain.DonationHistoryFilter{
		Kind: domain.DonationKind(strings.TrimSpace(c.QueryParam("kind"))),
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	for _, raw := range strings.Split(c.QueryParam("statuses"), ",") {
		status := domain.DonationStatus(strings.TrimSpace(raw))
		switch status {
		case domain.DonationStatusPending, domain.DonationStatusPicked,
			domain.DonationStatusCompleted, domain.DonationStatusRejected:
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	donations, err := list(c.Request().Context(), user.ID, filter)
	if err != nil {
		if errors.Is(err, service.ErrDonationValidation) {
			return c.JSON(http.StatusBadRequest, util.Error("kind must be food or clothes"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not list donations"))
	}
	return c.JSON(http.StatusOK, util.Data("donations", toDonationResponses(donations)))
}

func parseDonationID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}
