// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hostelhq/hms/internal/handler"
	"github.com/hostelhq/hms/internal/middleware"
	"github.com/hostelhq/hms/internal/model"
)

// Handlers bundles every handler the route table needs.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Admin  *handler.AdminHandler
	Hostel *handler.HostelHandler
	Room   *handler.RoomHandler
}

// Register mounts all routes. cache may be nil when Redis is down; the
// listing endpoints then serve uncached.
func Register(e *echo.Echo, h Handlers, guard *middleware.Guard, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Public session and recovery endpoints.
	users := e.Group("/api/users")
	users.POST("/signup", h.Auth.SignUp)
	users.POST("/login", h.Auth.SignIn)
	users.GET("/logout", h.Auth.LogOut)
	users.POST("/refreshToken", h.Auth.Refresh)
	users.POST("/forgotPassword", h.Auth.ForgotPassword)
	users.PATCH("/resetPassword/:token", h.Auth.ResetPassword)
	users.POST("/sendEmailVerificationCode", h.Auth.SendEmailVerification)
	users.POST("/verifyEmailCode", h.Auth.VerifyEmailCode)

	// Self-service routes behind the guard.
	me := users.Group("", guard.Protect)
	me.GET("/me", h.User.Me)
	me.PATCH("/updateMyPassword", h.Auth.UpdatePassword)
	me.PATCH("/updateMe", h.User.UpdateMe)
	me.PATCH("/disableMe", h.User.DisableMe)
	me.DELETE("/deleteMe", h.User.DeleteMe)
	me.POST("/bookRoom", h.User.BookRoom)

	// Staff sign-in is public; everything else under /api/admin requires
	// an administrator session.
	adminGroup := e.Group("/api/admin")
	adminGroup.POST("/login", h.Auth.AdminSignIn)
	adminGroup.POST("/refreshToken", h.Auth.Refresh)

	admin := adminGroup.Group("", guard.Protect, middleware.RequireRole(model.RoleAdministrator))
	if cache != nil {
		admin.GET("/getAllUsers", h.Admin.GetAllUsers, cache)
		admin.GET("/getInactiveUsers", h.Admin.GetInactiveUsers, cache)
	} else {
		admin.GET("/getAllUsers", h.Admin.GetAllUsers)
		admin.GET("/getInactiveUsers", h.Admin.GetInactiveUsers)
	}
	admin.GET("/getUser/:id", h.Admin.GetUser)
	admin.PATCH("/updateUser/:id", h.Admin.UpdateUser)
	admin.PATCH("/disableUser/:id", h.Admin.DisableUser)
	admin.PATCH("/enableUser/:id", h.Admin.EnableUser)
	admin.DELETE("/deleteUser/:id", h.Admin.DeleteUser)
	admin.DELETE("/deleteAllUsers", h.Admin.DeleteAllUsers)
	admin.POST("/createAdmin", h.Auth.CreateAdmin)

	hostels := e.Group("/api/hostels", guard.Protect, middleware.RequireRole(model.RoleAdministrator))
	hostels.POST("/createHostel", h.Hostel.Create)
	if cache != nil {
		hostels.GET("/getAllHostels", h.Hostel.GetAll, cache)
	} else {
		hostels.GET("/getAllHostels", h.Hostel.GetAll)
	}
	hostels.GET("/getHostel/:id", h.Hostel.GetByID)
	hostels.PATCH("/updateHostel/:id", h.Hostel.Update)
	hostels.DELETE("/deleteHostel/:id", h.Hostel.Delete)

	rooms := e.Group("/api/rooms", guard.Protect, middleware.RequireRole(model.RoleAdministrator))
	rooms.POST("/createRoom", h.Room.Create)
	rooms.POST("/createMultipleRooms", h.Room.CreateMultipleRooms)
	if cache != nil {
		rooms.GET("/getAllRooms", h.Room.GetAll, cache)
	} else {
		rooms.GET("/getAllRooms", h.Room.GetAll)
	}
	rooms.GET("/getRoom/:id", h.Room.GetByID)
	rooms.PATCH("/updateRoom/:id", h.Room.Update)
	rooms.DELETE("/deleteRoom/:id", h.Room.Delete)
	rooms.POST("/addTenant/:id", h.Room.AddTenant)
	rooms.GET("/getRoomsByHostel/:hostelId", h.Room.GetRoomsByHostelID)
	rooms.GET("/getRoomStatus/:id", h.Room.GetRoomStatus)
	rooms.GET("/getOccupants/:id", h.Room.GetOccupants)
}
