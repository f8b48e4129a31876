// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"go-propmarket/controllers"
	"go-propmarket/middleware"
	"go-propmarket/models"
	"go-propmarket/utils"
)

// RegisterRoutes sets up all the routes for the application.
func RegisterRoutes(router *mux.Router, tokens *utils.TokenManager, userController *controllers.UserController, propertyController *controllers.PropertyController, wishlistController *controllers.WishlistController, orderController *controllers.OrderController) {
	auth := middleware.Auth(tokens)

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes (public)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", userController.Register).Methods("POST")
	authRoutes.HandleFunc("/login", userController.Login).Methods("POST")
	authRoutes.HandleFunc("/logout", userController.Logout).Methods("POST")

	// Property routes (public reads)
	api.HandleFunc("/property", propertyController.GetProperties).Methods("GET")
	api.HandleFunc("/property/{id}", propertyController.GetPropertyByID).Methods("GET")

	// Seller routes
	seller := api.PathPrefix("/property").Subrouter()
	seller.Use(auth, middleware.RequireRoles(models.RoleSeller))
	seller.HandleFunc("", propertyController.CreateProperty).Methods("POST")
	seller.HandleFunc("/{id}", propertyController.UpdateProperty).Methods("PUT")

	// Admin moderation
	admin := api.PathPrefix("/property").Subrouter()
	admin.Use(auth, middleware.RequireRoles(models.RoleAdmin))
	admin.HandleFunc("/{id}/approve", propertyController.ApproveProperty).Methods("PATCH")

	// Delete is admin-or-owning-seller; the controller checks ownership.
	propertyDelete := api.PathPrefix("/property").Subrouter()
	propertyDelete.Use(auth)
	propertyDelete.HandleFunc("/{id}", propertyController.DeleteProperty).Methods("DELETE")

	// Wishlist routes (buyer)
	wishlist := api.PathPrefix("/wishlist").Subrouter()
	wishlist.Use(auth, middleware.RequireRoles(models.RoleBuyer))
	wishlist.HandleFunc("/{propertyId}", wishlistController.AddToWishlist).Methods("POST")
	wishlist.HandleFunc("/{propertyId}", wishlistController.RemoveFromWishlist).Methods("DELETE")
	wishlist.HandleFunc("", wishlistController.GetWishlist).Methods("GET")

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(auth)
	orders.HandleFunc("", orderController.CreateOrder).Methods("POST")
	orders.HandleFunc("/verify", orderController.VerifyPayment).Methods("POST")
	orders.HandleFunc("", orderController.GetOrders).Methods("GET")
	orders.HandleFunc("/{id}", orderController.GetOrderByID).Methods("GET")
}
