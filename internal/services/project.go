package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/chantierly/visadoc/internal/models"
)

// ProjectService manages project lifecycle. A project exclusively owns its
// members, documents, histories and invitations: deleting the project
// cascades to all of them.
type ProjectService struct {
	db     *gorm.DB
	access *AccessService
}

func NewProjectService(db *gorm.DB, access *AccessService) *ProjectService {
	return &ProjectService{db: db, access: access}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	Code     string `form:"code"`
	Name     string `form:"name"`
	Status   string `form:"status"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type UpdateProjectRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Status   string `json:"status" binding:"omitempty,oneof=active on_hold completed cancelled"`
	Progress *int   `json:"progress"`
}

// List returns the caller's projects, paginated. Users with the admin global
// role see every project.
func (s *ProjectService) List(actorID uint, isGlobalAdmin bool, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.Model(&models.Project{})
	if !isGlobalAdmin {
		query = query.Where(
			"id IN (?)",
			s.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", actorID),
		)
	}
	if req.Code != "" {
		query = query.Where("code = ?", req.Code)
	}
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var projects []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// GetByID returns a project. The caller needs read access (or the admin
// global role).
func (s *ProjectService) GetByID(actorID uint, isGlobalAdmin bool, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isGlobalAdmin {
		if err := s.access.CheckAccess(actorID, projectID, RequireRead); err != nil {
			return nil, err
		}
	}
	return &project, nil
}

// Create creates a project and its owner membership row in one transaction,
// so there is exactly one owner from the first observable instant.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	project := models.Project{
		Code:    code,
		Name:    req.Name,
		Address: req.Address,
		OwnerID: ownerID,
		Status:  models.ProjectActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Project{}).Where("code = ?", code).Count(&count)
		if count > 0 {
			return fmt.Errorf("project code %s already exists", code)
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProjectMember{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.MemberOwner,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	LogInfo("Projects", "Create",
		fmt.Sprintf("project %s created", code), &ownerID, &project.ID, "", "", nil)
	return &project, nil
}

// Update changes a project's name, address, status or progress. Requires
// admin access.
func (s *ProjectService) Update(actorID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.access.CheckAccess(actorID, projectID, RequireAdmin); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Status != "" {
		if !models.ValidProjectStatus(req.Status) {
			return nil, fmt.Errorf("invalid project status %q", req.Status)
		}
		updates["status"] = req.Status
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, fmt.Errorf("progress must be between 0 and 100")
		}
		updates["progress"] = *req.Progress
	}

	if len(updates) == 0 {
		return &project, nil
	}
	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project and everything it owns: members, documents,
// document histories and invitations. Only the owner may delete a project.
func (s *ProjectService) Delete(actorID, projectID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	level, err := s.access.ResolveAccess(actorID, projectID)
	if err != nil {
		return err
	}
	if level < AccessOwner {
		return ErrDenied
	}

	LogWarning("Projects", "Delete",
		fmt.Sprintf("project %s deleted with all documents and members", project.Code),
		&actorID, &projectID, "", "", nil)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var docIDs []uint
		if err := tx.Model(&models.Document{}).Where("project_id = ?", projectID).
			Pluck("id", &docIDs).Error; err != nil {
			return err
		}
		if len(docIDs) > 0 {
			if err := tx.Where("document_id IN ?", docIDs).
				Delete(&models.DocumentHistory{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}
