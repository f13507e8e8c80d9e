package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type registryPupilRepo interface {
	Create(ctx context.Context, pupil *models.Pupil) error
	FindByID(ctx context.Context, id int64) (*models.Pupil, error)
	List(ctx context.Context, page, perPage int) ([]models.Pupil, int, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Pupil, error)
	Update(ctx context.Context, pupil *models.Pupil) error
	Delete(ctx context.Context, id int64) error
}

type registryClassRepo interface {
	CreateClass(ctx context.Context, class *models.Class) error
	FindClassByID(ctx context.Context, id int64) (*models.Class, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
	CreateStream(ctx context.Context, stream *models.Stream) error
	FindStreamByID(ctx context.Context, id int64) (*models.Stream, error)
	ListStreamsByClass(ctx context.Context, classID int64) ([]models.Stream, error)
}

type registrySubjectRepo interface {
	Create(ctx context.Context, subject *models.Subject) error
	List(ctx context.Context) ([]models.Subject, error)
}

type registryUserRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ListTeachers(ctx context.Context, includePlaceholders bool) ([]models.User, error)
}

type registryAssignmentRepo interface {
	Upsert(ctx context.Context, a *models.TeacherAssignment) error
	FindByClassStream(ctx context.Context, classID, streamID int64) (*models.TeacherAssignment, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignment, error)
}

// RegistryService is the boundary for people and catalog records: pupils,
// classes, streams, subjects, staff accounts and class-teacher
// designations. Assessment and timetable code trusts ids that pass
// through here.
type RegistryService struct {
	pupilRepo      registryPupilRepo
	classRepo      registryClassRepo
	subjectRepo    registrySubjectRepo
	userRepo       registryUserRepo
	assignmentRepo registryAssignmentRepo
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewRegistryService creates a new registry service.
func NewRegistryService(
	pupilRepo registryPupilRepo,
	classRepo registryClassRepo,
	subjectRepo registrySubjectRepo,
	userRepo registryUserRepo,
	assignmentRepo registryAssignmentRepo,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		pupilRepo:      pupilRepo,
		classRepo:      classRepo,
		subjectRepo:    subjectRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		validate:       validator.New(),
		logger:         logger,
	}
}

// RegisterPupilInput enrolls one pupil.
type RegisterPupilInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	ClassID   int64  `json:"class_id" validate:"required"`
	StreamID  *int64 `json:"stream_id"`
}

// RegisterPupil checks the class and optional stream exist and belong
// together, then creates the pupil.
func (s *RegistryService) RegisterPupil(ctx context.Context, input RegisterPupilInput) (*models.Pupil, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	if _, err := s.classRepo.FindClassByID(ctx, input.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Class not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if input.StreamID != nil {
		stream, err := s.classRepo.FindStreamByID(ctx, *input.StreamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrNotFound.Clone("Stream not found")
			}
			return nil, appErrors.ErrInternal.Wrap(err)
		}
		if stream.ClassID != input.ClassID {
			return nil, appErrors.ErrValidation.Clone("Stream does not belong to the given class")
		}
	}
	pupil := &models.Pupil{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		ClassID:   input.ClassID,
		StreamID:  input.StreamID,
	}
	if err := s.pupilRepo.Create(ctx, pupil); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	s.logger.Info("pupil registered", zap.Int64("pupil_id", pupil.ID), zap.Int64("class_id", pupil.ClassID))
	return pupil, nil
}

// Pupil returns one pupil.
func (s *RegistryService) Pupil(ctx context.Context, id int64) (*models.Pupil, error) {
	pupil, err := s.pupilRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return pupil, nil
}

// Pupils returns one page of pupils plus pagination metadata.
func (s *RegistryService) Pupils(ctx context.Context, page, perPage int) ([]models.Pupil, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	pupils, total, err := s.pupilRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, nil, appErrors.ErrInternal.Wrap(err)
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	return pupils, &models.Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}, nil
}

// ClassPupils lists every pupil enrolled in a class.
func (s *RegistryService) ClassPupils(ctx context.Context, classID int64) ([]models.Pupil, error) {
	if _, err := s.classRepo.FindClassByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Class not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	pupils, err := s.pupilRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return pupils, nil
}

// UpdatePupilInput edits enrollment details.
type UpdatePupilInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	ClassID   int64  `json:"class_id" validate:"required"`
	StreamID  *int64 `json:"stream_id"`
}

// UpdatePupil rewrites a pupil's enrollment details.
func (s *RegistryService) UpdatePupil(ctx context.Context, id int64, input UpdatePupilInput) (*models.Pupil, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	pupil, err := s.Pupil(ctx, id)
	if err != nil {
		return nil, err
	}
	pupil.FirstName = input.FirstName
	pupil.LastName = input.LastName
	pupil.ClassID = input.ClassID
	pupil.StreamID = input.StreamID
	if err := s.pupilRepo.Update(ctx, pupil); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return pupil, nil
}

// DeletePupil removes a pupil and, via schema cascade, its marks and
// reports.
func (s *RegistryService) DeletePupil(ctx context.Context, id int64) error {
	if _, err := s.Pupil(ctx, id); err != nil {
		return err
	}
	if err := s.pupilRepo.Delete(ctx, id); err != nil {
		return appErrors.ErrInternal.Wrap(err)
	}
	s.logger.Info("pupil deleted", zap.Int64("pupil_id", id))
	return nil
}

// CreateClassInput names a class.
type CreateClassInput struct {
	Name string `json:"name" validate:"required"`
}

// CreateClass adds a class.
func (s *RegistryService) CreateClass(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	class := &models.Class{Name: input.Name}
	if err := s.classRepo.CreateClass(ctx, class); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return class, nil
}

// Classes lists all classes.
func (s *RegistryService) Classes(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classRepo.ListClasses(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return classes, nil
}

// CreateStreamInput names a stream under a class.
type CreateStreamInput struct {
	ClassID int64  `json:"class_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

// CreateStream adds a stream to an existing class.
func (s *RegistryService) CreateStream(ctx context.Context, input CreateStreamInput) (*models.Stream, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	if _, err := s.classRepo.FindClassByID(ctx, input.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Class not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	stream := &models.Stream{ClassID: input.ClassID, Name: input.Name}
	if err := s.classRepo.CreateStream(ctx, stream); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return stream, nil
}

// Streams lists a class's streams.
func (s *RegistryService) Streams(ctx context.Context, classID int64) ([]models.Stream, error) {
	streams, err := s.classRepo.ListStreamsByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return streams, nil
}

// CreateSubjectInput names a subject.
type CreateSubjectInput struct {
	Name string `json:"name" validate:"required"`
}

// CreateSubject adds a subject to the catalog. Note that adding a subject
// lowers every pupil's combined average on the next term recompute, since
// the divisor is the catalog size.
func (s *RegistryService) CreateSubject(ctx context.Context, input CreateSubjectInput) (*models.Subject, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	subject := &models.Subject{Name: input.Name}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return subject, nil
}

// Subjects lists the subject catalog.
func (s *RegistryService) Subjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return subjects, nil
}

// CreateUserInput creates a staff account. Placeholder accounts carry no
// usable password and exist so imported staff can hold assignments and
// timetable slots before they ever log in.
type CreateUserInput struct {
	FirstName   string          `json:"first_name" validate:"required"`
	LastName    string          `json:"last_name" validate:"required"`
	Email       string          `json:"email" validate:"required,email"`
	Password    string          `json:"password" validate:"required_without=Placeholder,omitempty,min=8"`
	Role        models.UserRole `json:"role" validate:"required"`
	Placeholder bool            `json:"placeholder"`
}

// CreateUser hashes the password and stores the account.
func (s *RegistryService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	if !input.Role.Valid() {
		return nil, appErrors.ErrValidation.Clone("Unknown role")
	}
	user := &models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Role:        input.Role,
		Placeholder: input.Placeholder,
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.ErrInternal.Wrap(err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("placeholder", user.Placeholder))
	return user, nil
}

// Teachers lists teacher accounts, optionally including placeholders.
func (s *RegistryService) Teachers(ctx context.Context, includePlaceholders bool) ([]models.User, error) {
	teachers, err := s.userRepo.ListTeachers(ctx, includePlaceholders)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return teachers, nil
}

// AssignTeacherInput designates a class-teacher.
type AssignTeacherInput struct {
	TeacherID int64 `json:"teacher_id" validate:"required"`
	ClassID   int64 `json:"class_id" validate:"required"`
	StreamID  int64 `json:"stream_id" validate:"required"`
}

// AssignTeacher designates a teacher for a (class, stream), replacing any
// prior designation.
func (s *RegistryService) AssignTeacher(ctx context.Context, input AssignTeacherInput) (*models.TeacherAssignment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	user, err := s.userRepo.FindByID(ctx, input.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Teacher not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if user.Role != models.RoleTeacher {
		return nil, appErrors.ErrValidation.Clone("User is not a teacher")
	}
	stream, err := s.classRepo.FindStreamByID(ctx, input.StreamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Stream not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if stream.ClassID != input.ClassID {
		return nil, appErrors.ErrValidation.Clone("Stream does not belong to the given class")
	}
	assignment := &models.TeacherAssignment{
		TeacherID: input.TeacherID,
		ClassID:   input.ClassID,
		StreamID:  input.StreamID,
	}
	if err := s.assignmentRepo.Upsert(ctx, assignment); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return assignment, nil
}

// TeacherAssignments lists a teacher's designations.
func (s *RegistryService) TeacherAssignments(ctx context.Context, teacherID int64) ([]models.TeacherAssignment, error) {
	assignments, err := s.assignmentRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return assignments, nil
}
