package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/api"
	"github.com/zvrva/slotbooker/config"
	"github.com/zvrva/slotbooker/internal/service/booking"
	"github.com/zvrva/slotbooker/internal/service/slots"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. Shutdown is graceful with a short drain window.
func Run(ctx context.Context, cfg *config.Config, slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, logger *zap.Logger) error {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewSlotHandler(slotSvc).Register(v1)
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
