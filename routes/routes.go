package routes

import (
	"github.com/Dosada05/team-training-system/handlers"
	"github.com/Dosada05/team-training-system/middleware"
	"github.com/Dosada05/team-training-system/models"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes настраивает все HTTP-маршруты приложения.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	corsAllowedOrigins []string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sportHandler *handlers.SportHandler,
	teamHandler *handlers.TeamHandler,
	memberHandler *handlers.MemberHandler,
	inviteHandler *handlers.InviteHandler,
	workoutHandler *handlers.WorkoutHandler,
	sessionHandler *handlers.SessionHandler,
	attendanceHandler *handlers.AttendanceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/sports", sportHandler.ListSports)
	router.Get("/sports/{sportID}", sportHandler.GetSportByID)

	router.Get("/swagger/*", httpSwagger.Handler())

	// WebSocket: комнаты тренировок для живых обновлений посещаемости.
	router.Get("/ws/sessions/{sessionID}", webSocketHandler.ServeWs)

	// Справочник видов спорта меняют только администраторы платформы.
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(string(models.RoleAdmin)))

		r.Post("/sports", sportHandler.CreateSport)
		r.Patch("/sports/{sportID}", sportHandler.UpdateSport)
		r.Delete("/sports/{sportID}", sportHandler.DeleteSport)
	})

	// Защищённые маршруты
	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", userHandler.GetUserByID)
			r.Patch("/{id}", userHandler.UpdateUserByID)
			r.Post("/{id}/avatar", userHandler.UploadAvatar)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.CreateTeam)
			r.Get("/{teamID}", teamHandler.GetTeamByID)
			r.Patch("/{teamID}", teamHandler.UpdateTeam)
			r.Delete("/{teamID}", teamHandler.DeleteTeam)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)

			r.Get("/{teamID}/members", memberHandler.ListMembers)
			r.Post("/{teamID}/members", memberHandler.AddMember)

			r.Get("/{teamID}/invites", inviteHandler.ListTeamInvites)
			r.Post("/{teamID}/invites", inviteHandler.CreateInvite)
			r.Delete("/{teamID}/invites/{inviteID}", inviteHandler.DeleteInvite)
		})

		r.Route("/team-members", func(r chi.Router) {
			r.Patch("/{memberID}", memberHandler.UpdateMember)
			r.Delete("/{memberID}", memberHandler.RemoveMember)
		})

		r.Post("/invites/{token}/accept", inviteHandler.AcceptInvite)

		r.Route("/workouts", func(r chi.Router) {
			r.Post("/", workoutHandler.CreateWorkout)
			r.Get("/", workoutHandler.ListWorkouts)
			r.Get("/{workoutID}", workoutHandler.GetWorkoutByID)
			r.Patch("/{workoutID}", workoutHandler.UpdateWorkout)
			r.Delete("/{workoutID}", workoutHandler.DeleteWorkout)
			r.Put("/{workoutID}/exercises", workoutHandler.SetExercises)
		})

		r.Route("/training-sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/", sessionHandler.ListSessions)
			r.Get("/{sessionID}", sessionHandler.GetSessionByID)
			r.Patch("/{sessionID}", sessionHandler.UpdateSession)
			r.Delete("/{sessionID}", sessionHandler.DeleteSession)

			r.Get("/{sessionID}/attendance", attendanceHandler.ListSessionAttendance)
			r.Post("/{sessionID}/attendance/mark-all-present", attendanceHandler.MarkAllPresent)
		})

		r.Patch("/attendance/{attendanceID}", attendanceHandler.UpdateAttendance)
	})
}
