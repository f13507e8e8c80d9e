package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

// RegistryHandler serves the people and catalog CRUD surface.
type RegistryHandler struct {
	registry *service.RegistryService
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(registry *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// RegisterPupil godoc
// @Summary Enroll a pupil
// @Tags registry
// @Accept json
// @Produce json
// @Param payload body service.RegisterPupilInput true "Pupil"
// @Success 201 {object} response.Envelope{data=models.Pupil}
// @Router /pupils [post]
func (h *RegistryHandler) RegisterPupil(c *gin.Context) {
	var input service.RegisterPupilInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	pupil, err := h.registry.RegisterPupil(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pupil)
}

// Pupils godoc
// @Summary List pupils
// @Tags registry
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Pupil}
// @Router /pupils [get]
func (h *RegistryHandler) Pupils(c *gin.Context) {
	pupils, pagination, err := h.registry.Pupils(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "per_page", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pupils, pagination)
}

// Pupil returns one pupil.
func (h *RegistryHandler) Pupil(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	pupil, err := h.registry.Pupil(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pupil, nil)
}

// UpdatePupil rewrites a pupil's enrollment details.
func (h *RegistryHandler) UpdatePupil(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input service.UpdatePupilInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	pupil, err := h.registry.UpdatePupil(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pupil, nil)
}

// DeletePupil removes a pupil.
func (h *RegistryHandler) DeletePupil(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registry.DeletePupil(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateClass adds a class.
func (h *RegistryHandler) CreateClass(c *gin.Context) {
	var input service.CreateClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	class, err := h.registry.CreateClass(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Classes lists all classes.
func (h *RegistryHandler) Classes(c *gin.Context) {
	classes, err := h.registry.Classes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ClassPupils lists a class's pupils.
func (h *RegistryHandler) ClassPupils(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	pupils, err := h.registry.ClassPupils(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pupils, nil)
}

// CreateStream adds a stream under a class.
func (h *RegistryHandler) CreateStream(c *gin.Context) {
	var input service.CreateStreamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	stream, err := h.registry.CreateStream(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stream)
}

// Streams lists a class's streams.
func (h *RegistryHandler) Streams(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	streams, err := h.registry.Streams(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streams, nil)
}

// CreateSubject adds a subject to the catalog.
func (h *RegistryHandler) CreateSubject(c *gin.Context) {
	var input service.CreateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	subject, err := h.registry.CreateSubject(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Subjects lists the subject catalog.
func (h *RegistryHandler) Subjects(c *gin.Context) {
	subjects, err := h.registry.Subjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// CreateUser godoc
// @Summary Create a staff account
// @Description Password is bcrypt-hashed. Placeholder accounts may omit it; they can hold assignments but cannot log in and take no timetable slots.
// @Tags registry
// @Accept json
// @Produce json
// @Param payload body service.CreateUserInput true "Account"
// @Success 201 {object} response.Envelope{data=models.User}
// @Router /users [post]
func (h *RegistryHandler) CreateUser(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	user, err := h.registry.CreateUser(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Teachers lists teacher accounts.
func (h *RegistryHandler) Teachers(c *gin.Context) {
	includePlaceholders := c.Query("include_placeholders") == "true"
	teachers, err := h.registry.Teachers(c.Request.Context(), includePlaceholders)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// AssignTeacher designates a class-teacher for a (class, stream).
func (h *RegistryHandler) AssignTeacher(c *gin.Context) {
	var input service.AssignTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	assignment, err := h.registry.AssignTeacher(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// TeacherAssignments lists a teacher's designations.
func (h *RegistryHandler) TeacherAssignments(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.registry.TeacherAssignments(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
