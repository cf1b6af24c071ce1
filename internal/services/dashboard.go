package services

import (
	"time"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStatsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	ProjectID *uint  `form:"project_id"`
}

type DashboardStats struct {
	ActiveProjects   int64 `json:"active_projects"`
	ActiveForms      int64 `json:"active_forms"`
	TotalSubmissions int64 `json:"total_submissions"`
	OpenTasks        int64 `json:"open_tasks"`
	OverdueTasks     int64 `json:"overdue_tasks"`
}

type FormStats struct {
	FormID          uint   `json:"form_id"`
	FormTitle       string `json:"form_title"`
	SubmissionCount int64  `json:"submission_count"`
}

type AssigneeStats struct {
	AssigneeID uint   `json:"assignee_id"`
	Username   string `json:"username"`
	OpenTasks  int64  `json:"open_tasks"`
	DoneTasks  int64  `json:"done_tasks"`
}

type DashboardResponse struct {
	Stats         DashboardStats  `json:"stats"`
	FormStats     []FormStats     `json:"form_stats"`
	AssigneeStats []AssigneeStats `json:"assignee_stats"`
}

func (s *DashboardService) GetStats(req *DashboardStatsRequest) (*DashboardResponse, error) {
	var startDate, endDate time.Time
	var err error

	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			startDate = time.Now().AddDate(0, 0, -7)
		}
	} else {
		startDate = time.Now().AddDate(0, 0, -7)
	}

	if req.EndDate != "" {
		endDate, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			endDate = time.Now()
		}
		endDate = endDate.Add(24*time.Hour - time.Second)
	} else {
		endDate = time.Now()
	}

	var stats DashboardStats

	submissions := s.db.Model(&models.FormSubmission{}).
		Where("form_submissions.created_at BETWEEN ? AND ?", startDate, endDate)
	if req.ProjectID != nil {
		submissions = submissions.
			Joins("JOIN forms ON forms.id = form_submissions.form_id").
			Where("forms.project_id = ?", *req.ProjectID)
	}
	submissions.Count(&stats.TotalSubmissions)

	formsQuery := s.db.Model(&models.Form{}).Where("status = ?", models.FormStatusActive)
	if req.ProjectID != nil {
		formsQuery = formsQuery.Where("project_id = ?", *req.ProjectID)
	}
	formsQuery.Count(&stats.ActiveForms)

	tasksQuery := s.db.Model(&models.Task{}).
		Where("status IN ?", []string{models.TaskStatusOpen, models.TaskStatusInProgress})
	if req.ProjectID != nil {
		tasksQuery = tasksQuery.Where("project_id = ?", *req.ProjectID)
	}
	tasksQuery.Count(&stats.OpenTasks)

	overdueQuery := s.db.Model(&models.Task{}).
		Where("status IN ? AND due_date < ?",
			[]string{models.TaskStatusOpen, models.TaskStatusInProgress}, time.Now())
	if req.ProjectID != nil {
		overdueQuery = overdueQuery.Where("project_id = ?", *req.ProjectID)
	}
	overdueQuery.Count(&stats.OverdueTasks)

	if req.ProjectID != nil {
		stats.ActiveProjects = 1
	} else {
		s.db.Model(&models.FormSubmission{}).
			Joins("JOIN forms ON forms.id = form_submissions.form_id").
			Where("form_submissions.created_at BETWEEN ? AND ?", startDate, endDate).
			Distinct("forms.project_id").
			Count(&stats.ActiveProjects)
	}

	var formStats []FormStats
	formStatsQuery := s.db.Model(&models.FormSubmission{}).
		Select("form_id, COUNT(*) as submission_count").
		Where("form_submissions.created_at BETWEEN ? AND ?", startDate, endDate)
	if req.ProjectID != nil {
		formStatsQuery = formStatsQuery.
			Joins("JOIN forms ON forms.id = form_submissions.form_id").
			Where("forms.project_id = ?", *req.ProjectID)
	}
	formStatsQuery.Group("form_id").
		Order("submission_count DESC").
		Limit(10).
		Scan(&formStats)

	for i := range formStats {
		var form models.Form
		if err := s.db.First(&form, formStats[i].FormID).Error; err == nil {
			formStats[i].FormTitle = form.Title
		}
	}

	var assigneeStats []AssigneeStats
	assigneeQuery := s.db.Model(&models.Task{}).
		Select("assignee_id, " +
			"SUM(CASE WHEN status IN ('open','in_progress') THEN 1 ELSE 0 END) as open_tasks, " +
			"SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END) as done_tasks")
	if req.ProjectID != nil {
		assigneeQuery = assigneeQuery.Where("project_id = ?", *req.ProjectID)
	}
	assigneeQuery.Group("assignee_id").
		Order("open_tasks DESC").
		Limit(10).
		Scan(&assigneeStats)

	for i := range assigneeStats {
		var user models.User
		if err := s.db.First(&user, assigneeStats[i].AssigneeID).Error; err == nil {
			assigneeStats[i].Username = user.Username
		}
	}

	return &DashboardResponse{
		Stats:         stats,
		FormStats:     formStats,
		AssigneeStats: assigneeStats,
	}, nil
}
