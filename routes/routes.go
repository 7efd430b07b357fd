package routes

import (
	"net/http"

	"ong_equipment_tool/app"
	"ong_equipment_tool/controllers"
	"ong_equipment_tool/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	eqCtl := controllers.NewEquipmentController(s)
	colCtl := controllers.NewCollaboratorController(s)
	loanCtl := controllers.NewLoanController(s)
	asgCtl := controllers.NewAssignmentController(s)
	mntCtl := controllers.NewMaintenanceController(s)
	setCtl := controllers.NewSettingsController(s)
	repCtl := controllers.NewReportController(s)
	uc := controllers.NewUserController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), a.Repo, a.Config, a.Log.Named("auth"))
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.SeenThrottle, a.Log.Named("auth"))
	writeMW := app.RequireRole(models.RoleOperator)
	adminMW := app.AdminOnly()

	// 公开
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	api := r.Group("/api", authMW, seenMW)

	api.GET("/me", uc.Me)
	api.POST("/logout", uc.Logout)

	// ------------------------------
	// 设备
	// ------------------------------
	eq := api.Group("/equipment")
	{
		eq.GET("", eqCtl.List) // ?status=&type=&q=&page=&size=
		eq.GET("/:id", eqCtl.Get)
		eq.GET("/:id/history", eqCtl.History)
		eq.POST("", writeMW, eqCtl.Create)
		eq.PATCH("/:id", writeMW, eqCtl.Update)
		eq.DELETE("/:id", writeMW, eqCtl.Delete)
		eq.POST("/:id/status", adminMW, eqCtl.Override)
	}

	// ------------------------------
	// 协作者
	// ------------------------------
	col := api.Group("/collaborators")
	{
		col.GET("", colCtl.List)
		col.GET("/:id", colCtl.Get)
		col.POST("", writeMW, colCtl.Create)
		col.PATCH("/:id", writeMW, colCtl.Update)
		col.POST("/:id/deactivate", writeMW, colCtl.Deactivate)
		col.POST("/:id/activate", writeMW, colCtl.Activate)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := api.Group("/loans")
	{
		loans.GET("", loanCtl.List) // ?status=loaned|returned&equipmentId=&overdue=true
		loans.GET("/:id", loanCtl.Get)
		loans.POST("", writeMW, loanCtl.Create)
		loans.POST("/:id/return", writeMW, loanCtl.Return)
	}

	// ------------------------------
	// 分配
	// ------------------------------
	asg := api.Group("/assignments")
	{
		asg.GET("", asgCtl.List)
		asg.GET("/:id", asgCtl.Get)
		asg.POST("", writeMW, asgCtl.Create)
		asg.PATCH("/:id", writeMW, asgCtl.Update)
		asg.POST("/:id/release", writeMW, asgCtl.Release)
		asg.POST("/:id/donate", writeMW, asgCtl.Donate)
	}

	// ------------------------------
	// 维护
	// ------------------------------
	mnt := api.Group("/maintenance")
	{
		mnt.GET("", mntCtl.List)
		mnt.GET("/:id", mntCtl.Get)
		mnt.POST("", writeMW, mntCtl.Create)
		mnt.PATCH("/:id", writeMW, mntCtl.Update)
		mnt.POST("/:id/start", writeMW, mntCtl.Start)
		mnt.POST("/:id/complete", writeMW, mntCtl.Complete)
		mnt.POST("/:id/cancel", writeMW, mntCtl.Cancel)
	}

	// 报表
	rep := api.Group("/reports")
	{
		rep.GET("/predictive-maintenance", repCtl.PredictiveMaintenance) // ?days=30
		rep.GET("/overdue-loans", repCtl.OverdueLoans)
		rep.GET("/summary", repCtl.Summary)
	}

	// 设置
	api.GET("/settings/:key", setCtl.Get)
	api.PUT("/settings/:key", adminMW, setCtl.Put)

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := api.Group("/users", adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id/role", uc.SetRole)
		users.DELETE("/:id", uc.DeleteUser)
	}
}
