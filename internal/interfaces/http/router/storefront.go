package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lfs/storefront/internal/interfaces/http/handler"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
)

// Handlers are the handlers of the storefront API
type Handlers struct {
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Shipping   *handler.ShippingHandler
	Payment    *handler.PaymentHandler
	Cart       *handler.CartHandler
	Marketing  *handler.MarketingHandler
}

// StorefrontGroups returns the route groups of the storefront API. Routes
// changing a visitor's state require a session or customer header.
func StorefrontGroups(h Handlers) []RouteRegistrar {
	requireIdentity := middleware.RequireIdentity()

	products := NewDomainGroup("products", "/products").
		GET("/:slug", h.Products.Get).
		GET("/:slug/delivery", h.Products.Delivery)

	categories := NewDomainGroup("categories", "/categories").
		GET("/:slug/products", h.Categories.Products).
		GET("/:slug/filters", h.Categories.Filters).
		GET("/:slug/price-filters", h.Categories.PriceFilters)

	shipping := NewDomainGroup("shipping", "/shipping").
		GET("/methods", h.Shipping.Methods).
		GET("/selected", h.Shipping.Selected).
		PUT("/selected", requireIdentity, h.Shipping.Select).
		PUT("/country", requireIdentity, h.Shipping.SelectCountry).
		GET("/delivery-time", h.Shipping.DeliveryTime)

	payment := NewDomainGroup("payment", "/payment").
		GET("/methods", h.Payment.Methods).
		GET("/selected", h.Payment.Selected).
		PUT("/selected", requireIdentity, h.Payment.Select)

	cart := NewDomainGroup("cart", "/cart").
		GET("", h.Cart.Get).
		GET("/discounts", h.Cart.Discounts).
		POST("/voucher", h.Cart.Voucher)
	cart.Group("cart-items", "/items").
		Use(requireIdentity).
		POST("", h.Cart.AddItem).
		PUT("/:id", h.Cart.UpdateItem).
		DELETE("/:id", h.Cart.RemoveItem)
	cart.POST("/merge", h.Cart.Merge).
		POST("/checkout", requireIdentity, h.Cart.Checkout)

	marketing := NewDomainGroup("marketing", "").
		GET("/topseller", h.Marketing.Topseller)

	return []RouteRegistrar{products, categories, shipping, payment, cart, marketing}
}

// RegisterProbes mounts the health probes and, when metrics is not nil,
// the Prometheus endpoint outside the versioned API.
func RegisterProbes(engine *gin.Engine, health *handler.HealthHandler, metricsPath string, metrics http.Handler) {
	engine.GET("/health", health.Live)
	engine.GET("/health/ready", health.Ready)
	if metrics != nil {
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
}
