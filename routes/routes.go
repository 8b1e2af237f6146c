package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ye11ow-banana/main-be/controllers"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/middlewares"
	"github.com/ye11ow-banana/main-be/services"
)

type RouterDeps struct {
	Log         *logger.Logger
	CORSOrigins []string
	Auth        *services.AuthService

	AuthCtrl     *controllers.AuthController
	CalorieCtrl  *controllers.CalorieController
	ProductCtrl  *controllers.ProductController
	DeviceCtrl   *controllers.DeviceController
	RealtimeCtrl *controllers.RealtimeController
}

func SetupRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestLogger(d.Log), gin.Recovery(), middlewares.CORS(d.CORSOrigins))

	authRequired := middlewares.AuthMiddleware(d.Log, d.Auth, false)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", d.AuthCtrl.SignUp)
		auth.POST("/sign-in", d.AuthCtrl.SignIn)
		auth.POST("/refresh-token", d.AuthCtrl.RefreshToken)
	}

	me := r.Group("/auth")
	me.Use(authRequired)
	{
		me.GET("/me", d.AuthCtrl.Me)
		me.GET("/users", d.AuthCtrl.Users)
		me.POST("/email/verification-code", d.AuthCtrl.SendVerificationCode)
		me.POST("/email/verify", d.AuthCtrl.VerifyEmail)
		me.POST("/avatar", d.AuthCtrl.UploadAvatar)
		me.DELETE("/avatar", d.AuthCtrl.DeleteAvatar)
	}

	calorie := r.Group("/calorie")
	calorie.Use(authRequired)
	{
		calorie.POST("/ingest", d.CalorieCtrl.Ingest)
		calorie.POST("/days", d.CalorieCtrl.CreateDay)
		calorie.GET("/days", d.CalorieCtrl.ListDays)
		calorie.PATCH("/days/:id", d.CalorieCtrl.UpdateDay)
		calorie.GET("/sort_bys", d.CalorieCtrl.SortBys)
		calorie.GET("/filters/date-range", d.CalorieCtrl.DateRange)
		calorie.GET("/trend/items", d.CalorieCtrl.TrendItems)
	}

	products := r.Group("/products")
	products.Use(authRequired)
	{
		products.GET("", d.ProductCtrl.Search)
		products.POST("", d.ProductCtrl.Create)
		products.PUT("/:id", d.ProductCtrl.Update)
	}

	if d.DeviceCtrl != nil {
		devices := r.Group("/devices")
		devices.Use(authRequired)
		devices.POST("", d.DeviceCtrl.Register)
		devices.POST("/notifications/toggle", d.DeviceCtrl.ToggleNotifications)
	}

	// browsers can't set headers on the upgrade request
	r.GET("/ws/days", middlewares.AuthMiddleware(d.Log, d.Auth, true), d.RealtimeCtrl.DaysWS)

	return r
}
