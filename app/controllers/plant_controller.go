package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/bind"
	"github.com/shashiranjanraj/planty/pkg/ctx"
)

// MaxImageBytes caps plant image uploads.
const MaxImageBytes = 5 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlantService is what PlantController needs from services.PlantService.
type PlantService interface {
	Create(ctx context.Context, in services.PlantInput) (*models.Plant, error)
	List(ctx context.Context, f models.PlantFilter) ([]models.Plant, error)
	Get(ctx context.Context, id string) (*models.Plant, error)
	Update(ctx context.Context, id string, in services.PlantPatchInput) (*models.Plant, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Export(ctx context.Context, w io.Writer) error
}

type PlantController struct {
	plants PlantService
}

func NewPlantController(plants PlantService) *PlantController {
	return &PlantController{plants: plants}
}

// Index handles GET /plants?category=&status=.
func (pc *PlantController) Index(c *ctx.Context) {
	plants, err := pc.plants.List(c.Context(), models.PlantFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plants fetched successfully", plants)
}

func (pc *PlantController) Show(c *ctx.Context) {
	plant, err := pc.plants.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plant fetched successfully", plant)
}

func (pc *PlantController) Store(c *ctx.Context) {
	var in services.PlantInput
	if !c.BindJSON(&in) {
		return
	}
	plant, err := pc.plants.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Plant created successfully", plant)
}

func (pc *PlantController) Update(c *ctx.Context) {
	var in services.PlantPatchInput
	if !c.BindJSON(&in) {
		return
	}
	plant, err := pc.plants.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plant updated successfully", plant)
}

func (pc *PlantController) Destroy(c *ctx.Context) {
	if err := pc.plants.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plant deleted successfully", nil)
}

// UploadImage handles POST /plants/image with a multipart field "image".
func (pc *PlantController) UploadImage(c *ctx.Context) {
	up, err := bind.File(c.R, "image", MaxImageBytes, services.ImageFormats...)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	defer up.File.Close()

	url, err := pc.plants.UploadImage(c.Context(), up.Filename, up.ContentType, up.File)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Image uploaded successfully", map[string]string{"url": url})
}

// Export handles GET /plants/export. The workbook is built in memory so a
// failure can still be answered with a JSON error.
func (pc *PlantController) Export(c *ctx.Context) {
	var buf bytes.Buffer
	if err := pc.plants.Export(c.Context(), &buf); err != nil {
		c.Fail(err)
		return
	}
	c.SetHeader("Content-Type", xlsxContentType)
	c.SetHeader("Content-Disposition", "attachment; filename=plants.xlsx")
	c.SetHeader("Content-Length", strconv.Itoa(buf.Len()))
	c.Status(http.StatusOK)
	_, _ = c.W.Write(buf.Bytes())
}
