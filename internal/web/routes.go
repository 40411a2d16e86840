package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/WilliamWachholz/CameraTimeCard/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	timecardsHandler := handlers.NewTimecardsHandler(s.store)
	employeesHandler := handlers.NewEmployeesHandler(s.store)

	s.router.Get("/api/health", handlers.HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Timecards
		r.Post("/timecard", timecardsHandler.Report)
		r.Get("/timecards", timecardsHandler.List)

		// Employees
		r.Get("/employees", employeesHandler.List)
		r.Post("/employees", employeesHandler.Create)
		r.Get("/employee/{id}/timecards", timecardsHandler.ListForEmployee)
		r.Get("/employee/{id}/status", employeesHandler.Status)
		r.Post("/employee/{id}/faces", employeesHandler.AddFace)
		r.Get("/employee/{id}/faces/count", employeesHandler.FaceCount)
		r.Post("/faces/identify", employeesHandler.Identify)
	})
}
