package handler

import (
	"io"
	"net/http"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func providerFromParam(name string) (string, error) {
	switch name {
	case "paypal":
		return model.ProviderPaypal, nil
	case "mercado-pago":
		return model.ProviderMercadoPago, nil
	}
	return "", apperr.Validation("proveedor de pagos desconocido")
}

func (h *PaymentHandler) PaypalCreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("cuerpo de solicitud inválido")
	}
	if req.IDDonacion == "" {
		return apperr.Validation("id_donacion es requerido")
	}

	resp, err := h.paymentService.CreateOrder(ctx, model.ProviderPaypal, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) PaypalCapture(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CaptureRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("cuerpo de solicitud inválido")
	}
	if req.OrderID == "" {
		return apperr.Validation("order_id es requerido")
	}

	resp, err := h.paymentService.Capture(ctx, req.OrderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) MercadoPagoPreference(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("cuerpo de solicitud inválido")
	}
	if req.IDDonacion == "" {
		return apperr.Validation("id_donacion es requerido")
	}

	order, err := h.paymentService.CreateOrder(ctx, model.ProviderMercadoPago, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &dto.PreferenceResponse{
		IDPago:       order.IDPago,
		PreferenceID: order.OrderID,
		InitPoint:    order.ApproveURL,
		Estado:       order.Estado,
	})
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	providerName, err := providerFromParam(c.Param("proveedor"))
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.paymentService.HandleWebhook(ctx, providerName, c.Request().Header, body); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) Status(c echo.Context) error {
	resp, err := h.paymentService.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Methods(c echo.Context) error {
	return c.JSON(http.StatusOK, &dto.MethodsResponse{
		Metodos: h.paymentService.Methods(),
	})
}
