package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/cache"
	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/storage"
)

// ImageFolder is the storage prefix for plant pictures.
const ImageFolder = "plants"

// ImageFormats lists the accepted upload extensions.
var ImageFormats = []string{"jpg", "jpeg", "png", "webp", "gif"}

// PlantInput is the payload for creating a plant. Every field is required.
type PlantInput struct {
	PlantName   string  `json:"plantname"   validate:"required,max=120"`
	Description string  `json:"description" validate:"required"`
	Type        string  `json:"type"        validate:"required"`
	Category    string  `json:"category"    validate:"required,in=indoor,outdoor,succulents"`
	Status      string  `json:"status"      validate:"required,in=Available,Not Available"`
	Price       float64 `json:"price"       validate:"required,gt=0,decimals=2"`
	Image       string  `json:"image"       validate:"required"`
}

// PlantPatchInput is a partial update. Only supplied fields are checked.
type PlantPatchInput struct {
	PlantName   *string  `json:"plantname"   validate:"nullable,required,max=120"`
	Description *string  `json:"description" validate:"nullable,required"`
	Type        *string  `json:"type"        validate:"nullable,required"`
	Category    *string  `json:"category"    validate:"nullable,in=indoor,outdoor,succulents"`
	Status      *string  `json:"status"      validate:"nullable,in=Available,Not Available"`
	Price       *float64 `json:"price"       validate:"nullable,gt=0,decimals=2"`
	Image       *string  `json:"image"       validate:"nullable,required"`
}

// PlantService manages the catalogue. Reads go through a cache that every
// write invalidates.
type PlantService struct {
	plants   repositories.Plants
	cache    *cache.Store
	cacheTTL time.Duration
	disk     storage.Disk
}

func NewPlantService(plants repositories.Plants, store *cache.Store, ttl time.Duration, disk storage.Disk) *PlantService {
	return &PlantService{plants: plants, cache: store, cacheTTL: ttl, disk: disk}
}

func (s *PlantService) Create(ctx context.Context, in PlantInput) (*models.Plant, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	p := &models.Plant{
		PlantName:   in.PlantName,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Status:      in.Status,
		Price:       in.Price,
		Image:       in.Image,
	}
	if err := s.plants.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, primitive.NilObjectID)
	return p, nil
}

// List returns the catalogue, optionally narrowed by category and status.
func (s *PlantService) List(ctx context.Context, f models.PlantFilter) ([]models.Plant, error) {
	errs := map[string]string{}
	if f.Category != "" && !models.ValidCategory(f.Category) {
		errs["category"] = "The selected category is invalid."
	}
	if f.Status != "" && !models.ValidPlantStatus(f.Status) {
		errs["status"] = "The selected status is invalid."
	}
	if len(errs) > 0 {
		return nil, apperr.ValidationFields(errs)
	}

	var plants []models.Plant
	err := s.remember(ctx, listKey(f), &plants, func() (interface{}, error) {
		return s.plants.List(ctx, f)
	})
	return plants, err
}

func (s *PlantService) Get(ctx context.Context, id string) (*models.Plant, error) {
	oid, err := repositories.ObjectID(id, repositories.MsgPlantNotFound)
	if err != nil {
		return nil, err
	}
	var p models.Plant
	err = s.remember(ctx, plantKey(oid), &p, func() (interface{}, error) {
		return s.plants.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlantService) Update(ctx context.Context, id string, in PlantPatchInput) (*models.Plant, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	p, err := s.plants.Update(ctx, id, models.PlantPatch{
		PlantName:   in.PlantName,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Status:      in.Status,
		Price:       in.Price,
		Image:       in.Image,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.ID)
	return p, nil
}

func (s *PlantService) Delete(ctx context.Context, id string) error {
	oid, err := repositories.ObjectID(id, repositories.MsgPlantNotFound)
	if err != nil {
		return err
	}
	if err := s.plants.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, oid)
	return nil
}

// UploadImage stores an image under plants/<uuid>.<ext> and returns its
// public URL.
func (s *PlantService) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !allowedImage(ext) {
		return "", apperr.ValidationFields(map[string]string{
			"image": "The image must be one of: " + strings.Join(ImageFormats, ", ") + ".",
		})
	}

	key := fmt.Sprintf("%s/%s.%s", ImageFolder, uuid.NewString(), ext)
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return "", apperr.Internal("Error uploading image", err)
	}
	return s.disk.URL(key), nil
}

// Export writes the whole catalogue to w as an xlsx workbook.
func (s *PlantService) Export(ctx context.Context, w io.Writer) error {
	plants, err := s.plants.List(ctx, models.PlantFilter{})
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Plants")
	if err != nil {
		return apperr.Internal("could not build export", err)
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Name", "Description", "Type", "Category", "Status", "Price", "Image", "CreatedAt", "UpdatedAt"} {
		header.AddCell().SetString(h)
	}
	for _, p := range plants {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.Hex())
		row.AddCell().SetString(p.PlantName)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Type)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetString(p.Status)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return apperr.Internal("could not write export", err)
	}
	return nil
}

func (s *PlantService) remember(ctx context.Context, key string, dest interface{}, fn func() (interface{}, error)) error {
	return s.cache.Remember(ctx, key, s.cacheTTL, dest, fn)
}

// invalidate drops the plant's own entry and every list variant. The list
// keys are finite: each filter is empty or one of its enum values.
func (s *PlantService) invalidate(ctx context.Context, id primitive.ObjectID) {
	keys := make([]string, 0, 13)
	if !id.IsZero() {
		keys = append(keys, plantKey(id))
	}
	for _, c := range []string{"", models.CategoryIndoor, models.CategoryOutdoor, models.CategorySucculents} {
		for _, st := range []string{"", models.PlantAvailable, models.PlantNotAvailable} {
			keys = append(keys, listKey(models.PlantFilter{Category: c, Status: st}))
		}
	}
	if err := s.cache.Forget(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("plant cache invalidation failed", "error", err)
	}
}

// plantKey is built from the parsed id so every spelling of the same hex
// shares one entry.
func plantKey(id primitive.ObjectID) string { return "plant:" + id.Hex() }

func listKey(f models.PlantFilter) string {
	return "plants:" + f.Category + ":" + f.Status
}

func allowedImage(ext string) bool {
	for _, f := range ImageFormats {
		if ext == f {
			return true
		}
	}
	return false
}
