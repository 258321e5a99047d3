package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Cart    *services.CartService
	Orders  *services.OrderService
}

// NewApp builds the fiber app with the JSON error handler and standard middleware.
func NewApp(jwtSecret string, svc Services, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Bazaar Backend",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	if accessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, auth",
	}))

	Register(app, jwtSecret, svc)
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, jwtSecret string, svc Services) {
	authenticated := middleware.Authenticated(jwtSecret)
	admin := middleware.AdminOnly(jwtSecret)

	authHandler := handlers.NewAuthHandler(svc.Auth)
	productHandler := handlers.NewProductHandler(svc.Catalog)
	homeHandler := handlers.NewHomeHandler(svc.Catalog)
	cartHandler := handlers.NewCartHandler(svc.Cart)
	orderHandler := handlers.NewOrderHandler(svc.Orders)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	user := app.Group("/user")
	user.Get("/", admin, authHandler.ListUsers)
	user.Post("/register", authHandler.Register)
	user.Post("/login", authHandler.Login)
	user.Post("/validateOtp", authHandler.ValidateOTP)
	user.Get("/me", authenticated, authHandler.Me)
	user.Patch("/updateUser/:id", authenticated, authHandler.UpdateUser)

	adminGroup := app.Group("/admin")
	adminGroup.Post("/login", authHandler.AdminLogin)
	adminGroup.Post("/validateOtp", authHandler.AdminValidateOTP)
	adminGroup.Post("/register", admin, authHandler.AdminRegister)
	adminGroup.Get("/users", admin, authHandler.ListUsers)
	adminGroup.Get("/orders", admin, orderHandler.ListAllOrders)

	products := app.Group("/products")
	productHandler.RegisterProductRoutes(products, admin)

	home := app.Group("/homeproducts")
	home.Get("/", homeHandler.List)
	home.Post("/add", admin, homeHandler.Add)
	home.Delete("/delete/:id", admin, homeHandler.Remove)

	cart := app.Group("/cart", authenticated)
	cart.Get("/", cartHandler.List)
	cart.Post("/add", cartHandler.Add)
	cart.Patch("/update/:id", cartHandler.Update)
	cart.Delete("/delete/:id", cartHandler.Delete)

	orders := app.Group("/orders", authenticated)
	orders.Post("/place", orderHandler.PlaceOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
}
