package router

import (
	"time"

	"github.com/SmartSplit/smart-split-backend/config"
	"github.com/SmartSplit/smart-split-backend/handlers"
	"github.com/SmartSplit/smart-split-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config              *config.Config
	RedisClient         *redis.Client
	HealthHandler       *handlers.HealthHandler
	GroupHandler        *handlers.GroupHandler
	ExpenseHandler      *handlers.ExpenseHandler
	BalanceHandler      *handlers.BalanceHandler
	SettlementHandler   *handlers.SettlementHandler
	NotificationHandler *handlers.NotificationHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	// Mutating endpoints share one per-user limiter; reads stay unthrottled.
	writeLimiter := middleware.WriteRateLimiter(
		deps.RedisClient,
		deps.Config.RateLimit.WriteRequestsPerMinute,
		time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
	)

	v1 := r.Group("/v1")
	authRoutes := v1.Group("")
	authRoutes.Use(middleware.AuthMiddleware(&deps.Config.Server))
	{
		groupRoutes := authRoutes.Group("/groups")
		{
			groupRoutes.POST("", writeLimiter, deps.GroupHandler.CreateGroup)
			groupRoutes.GET("", deps.GroupHandler.ListGroups)
			groupRoutes.GET("/:id", deps.GroupHandler.GetGroup)

			memberRoutes := groupRoutes.Group("/:id/members")
			{
				memberRoutes.GET("", deps.GroupHandler.ListMembers)
				memberRoutes.POST("", writeLimiter, deps.GroupHandler.AddMember)
			}

			expenseRoutes := groupRoutes.Group("/:id/expenses")
			{
				expenseRoutes.POST("", writeLimiter, deps.ExpenseHandler.CreateExpense)
				expenseRoutes.GET("", deps.ExpenseHandler.ListExpenses)
				expenseRoutes.GET("/:expenseId", deps.ExpenseHandler.GetExpense)
				expenseRoutes.DELETE("/:expenseId", writeLimiter, deps.ExpenseHandler.DeleteExpense)
			}

			balanceRoutes := groupRoutes.Group("/:id/balances")
			{
				balanceRoutes.GET("", deps.BalanceHandler.GetBalances)
				balanceRoutes.GET("/simplified", deps.BalanceHandler.GetSimplifiedPayments)
				balanceRoutes.GET("/raw", deps.BalanceHandler.GetRawPayments)
			}

			groupRoutes.POST("/:id/settlements", writeLimiter, deps.SettlementHandler.RecordSettlement)
			groupRoutes.GET("/:id/settlements", deps.SettlementHandler.ListSettlements)
		}

		settlementRoutes := authRoutes.Group("/settlements")
		{
			settlementRoutes.GET("/pending", deps.SettlementHandler.ListPendingApprovals)
			settlementRoutes.POST("/:settlementId/approve", writeLimiter, deps.SettlementHandler.ApproveSettlement)
			settlementRoutes.POST("/:settlementId/reject", writeLimiter, deps.SettlementHandler.RejectSettlement)
		}

		notificationRoutes := authRoutes.Group("/notifications")
		{
			notificationRoutes.GET("", deps.NotificationHandler.ListNotifications)
			notificationRoutes.GET("/unread-count", deps.NotificationHandler.UnreadCount)
			notificationRoutes.POST("/:id/read", deps.NotificationHandler.MarkRead)
		}
	}

	return r
}
