package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/services/checkoutsvc"
	cancelorder "github.com/1241007/shop-spark-45/internal/transport/http/cancel_order"
	"github.com/1241007/shop-spark-45/internal/transport/http/checkout"
	clearcart "github.com/1241007/shop-spark-45/internal/transport/http/clear_cart"
	getcart "github.com/1241007/shop-spark-45/internal/transport/http/get_cart"
	getorder "github.com/1241007/shop-spark-45/internal/transport/http/get_order"
	listorders "github.com/1241007/shop-spark-45/internal/transport/http/list_orders"
	mergecart "github.com/1241007/shop-spark-45/internal/transport/http/merge_cart"
	setcartitem "github.com/1241007/shop-spark-45/internal/transport/http/set_cart_item"
	"github.com/1241007/shop-spark-45/pkg/http/middleware/trace"
	"github.com/1241007/shop-spark-45/pkg/logger"
)

type checkoutService interface {
	Checkout(ctx context.Context, req checkoutsvc.CheckoutRequest) (checkoutsvc.CheckoutResult, error)
}

type orderService interface {
	GetByID(ctx context.Context, userID, orderID string) (order.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error)
	Cancel(ctx context.Context, userID, orderID string) error
}

type cartService interface {
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	Merge(ctx context.Context, userID string, items []cartitem.CartItem) error
	List(ctx context.Context, userID string) ([]cartitem.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	checkout checkoutService
	orders   orderService
	carts    cartService
}

func NewHTTPTransport(checkout checkoutService, orders orderService, carts cartService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		checkout: checkout,
		orders:   orders,
		carts:    carts,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/checkout", h.postCheckout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.getOrders)
			r.Get("/{orderID}", h.getOrder)
			r.Post("/{orderID}/cancel", h.cancelOrder)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Put("/items", h.setCartItem)
			r.Post("/merge", h.mergeCart)
		})
	})
}

func (h *HTTPTransport) postCheckout(w http.ResponseWriter, r *http.Request) {
	checkout.Checkout(w, r, h.checkout, h.carts)
}

func (h *HTTPTransport) getOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.orders)
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	getcart.GetCart(w, r, h.carts)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	clearcart.ClearCart(w, r, h.carts)
}

func (h *HTTPTransport) setCartItem(w http.ResponseWriter, r *http.Request) {
	setcartitem.SetCartItem(w, r, h.carts)
}

func (h *HTTPTransport) mergeCart(w http.ResponseWriter, r *http.Request) {
	mergecart.MergeCart(w, r, h.carts)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
