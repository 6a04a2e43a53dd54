package server

import (
	"errors"
	"net/http"
	"time"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/handler"
	custommiddleware "donaciones-backend/internal/middleware"
	"donaciones-backend/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	donationHandler *handler.DonationHandler
	invoiceHandler  *handler.InvoiceHandler
	paymentHandler  *handler.PaymentHandler
}

func NewServer(
	donationHandler *handler.DonationHandler,
	invoiceHandler *handler.InvoiceHandler,
	paymentHandler *handler.PaymentHandler,
	evidenceStore *storage.EvidenceStore,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:            e,
		donationHandler: donationHandler,
		invoiceHandler:  invoiceHandler,
		paymentHandler:  paymentHandler,
	}

	s.setupRoutes(evidenceStore, jwtSecret)
	return s
}

func (s *Server) setupRoutes(evidenceStore *storage.EvidenceStore, jwtSecret string) {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok": true,
			"t":  time.Now().Unix(),
		})
	})

	// stored evidence served back under the same path prefix
	e.Static("/evidencias", evidenceStore.Dir())

	var auth echo.MiddlewareFunc
	if jwtSecret != "" {
		auth = custommiddleware.Auth(jwtSecret)
	} else {
		auth = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	donaciones := e.Group("/donaciones", auth)
	donaciones.POST("", s.donationHandler.Create)
	donaciones.GET("", s.donationHandler.List)
	donaciones.GET("/usuario/:id", s.donationHandler.ListByUser)
	donaciones.GET("/:id", s.donationHandler.Get)
	donaciones.POST("/:id/evidencias", s.donationHandler.UploadEvidence)
	donaciones.GET("/:id/evidencias", s.donationHandler.ListEvidence)

	facturas := e.Group("/facturas", auth)
	facturas.POST("", s.invoiceHandler.Create)
	facturas.GET("/donacion/:id/descargar", s.invoiceHandler.Download)

	pagos := e.Group("/pagos")
	pagos.GET("/metodos", s.paymentHandler.Methods)
	pagos.GET("/:id/estado", auth(s.paymentHandler.Status))

	paypal := pagos.Group("/paypal", auth)
	paypal.POST("/crear-orden", s.paymentHandler.PaypalCreateOrder)
	paypal.POST("/capturar", s.paymentHandler.PaypalCapture)

	mercadoPago := pagos.Group("/mercado-pago", auth)
	mercadoPago.POST("/preferencia", s.paymentHandler.MercadoPagoPreference)

	// provider callbacks authenticate via signature, not bearer token;
	// the body cap keeps hostile payloads out of the parser
	pagos.POST("/webhook/:proveedor", s.paymentHandler.Webhook, middleware.BodyLimit("1M"))
}

// errorHandler translates every error into the {message, error: true}
// envelope. Internal detail is logged, never exposed.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "error interno del servidor"

		var httpErr *echo.HTTPError

		switch {
		case errors.Is(err, apperr.ErrNotFound):
			status = http.StatusNotFound
			message = apperr.ErrNotFound.Error()
		case errors.Is(err, apperr.ErrValidation),
			errors.Is(err, apperr.ErrFileTooLarge),
			errors.Is(err, apperr.ErrTooManyFiles),
			errors.Is(err, apperr.ErrUnexpectedField),
			errors.Is(err, apperr.ErrDisallowedType),
			errors.Is(err, apperr.ErrUploadFailed):
			status = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, apperr.ErrProviderUnavailable):
			status = http.StatusServiceUnavailable
			message = apperr.ErrProviderUnavailable.Error()
		case errors.Is(err, apperr.ErrPaymentRejected):
			status = http.StatusUnprocessableEntity
			message = apperr.ErrPaymentRejected.Error()
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		default:
			logger.Error("unhandled request error",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		if err := c.JSON(status, map[string]interface{}{
			"message": message,
			"error":   true,
		}); err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
