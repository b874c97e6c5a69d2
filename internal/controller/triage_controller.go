package controller

import (
	"fmt"
	"io"
	"mime/multipart"

	"aivaidya-be/internal/dto"
	"aivaidya-be/internal/pkg/serverutils"
	"aivaidya-be/internal/service"
	"aivaidya-be/pkg/llm"
	"aivaidya-be/pkg/triage"

	"github.com/gofiber/fiber/v2"
)

const (
	formFieldSymptoms = "symptoms"
	formFieldImages   = "images"

	headerTriageModel = "X-Triage-Model"
)

type ITriageController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
	Diagnose(ctx *fiber.Ctx) error
	SelfTest(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type triageController struct {
	triageService service.ITriageService
	maxImages     int
	maxImageBytes int64
}

func NewTriageController(triageService service.ITriageService, maxImages int, maxImageBytes int64) ITriageController {
	if maxImages <= 0 {
		maxImages = triage.MaxImages
	}
	if maxImageBytes <= 0 {
		maxImageBytes = triage.MaxImageBytes
	}
	return &triageController{
		triageService: triageService,
		maxImages:     maxImages,
		maxImageBytes: maxImageBytes,
	}
}

func (c *triageController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	h := api.Group("/ai")
	h.Post("/diagnose", c.Diagnose)
	h.Get("/self-test", c.SelfTest)

	// Operator endpoints
	h.Get("/stats", jwtMiddleware, c.Stats)
}

// Diagnose runs one triage request
// @Summary Triage symptoms with optional photos
// @Description Multipart form: symptoms (required) and up to 3 images (8MB each). Extra images are ignored.
// @Tags AI
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} serverutils.BaseResponse[triage.Result]
// @Failure 400,413,422,500 {object} serverutils.BaseResponse[any]
// @Router /api/ai/diagnose [post]
func (c *triageController) Diagnose(ctx *fiber.Ctx) error {
	req := dto.DiagnoseRequest{Symptoms: ctx.FormValue(formFieldSymptoms)}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, triage.MsgDescribeSymptoms))
	}

	images, err := c.readImages(ctx)
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(serverutils.ErrorResponse(fiberErr.Code, fiberErr.Message))
		}
		return err
	}

	diag, err := c.triageService.Diagnose(ctx.UserContext(), triage.Request{
		Symptoms: req.Symptoms,
		Images:   images,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	ctx.Set(headerTriageModel, diag.Model)
	return ctx.JSON(serverutils.SuccessResponse("", diag.Result))
}

// readImages loads the first maxImages uploaded files. A request that is not
// multipart simply carries no images.
func (c *triageController) readImages(ctx *fiber.Ctx) ([]triage.Image, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files := form.File[formFieldImages]
	if len(files) > c.maxImages {
		files = files[:c.maxImages]
	}

	images := make([]triage.Image, 0, len(files))
	for _, fh := range files {
		if fh.Size > c.maxImageBytes {
			return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("Image %s exceeds the %dMB limit", fh.Filename, c.maxImageBytes/(1024*1024)))
		}

		data, err := readFile(fh)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Could not read image %s", fh.Filename))
		}

		images = append(images, triage.Image{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get(fiber.HeaderContentType),
			Data:     data,
		})
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// SelfTest checks that the model is configured and reachable
// @Summary AI self-test
// @Tags AI
// @Produce json
// @Success 200 {object} dto.SelfTestResponse
// @Failure 500 {object} dto.SelfTestResponse
// @Router /api/ai/self-test [get]
func (c *triageController) SelfTest(ctx *fiber.Ctx) error {
	res, err := c.triageService.SelfTest(ctx.UserContext())
	if err != nil {
		llmErr := llm.AsError(err)
		return ctx.Status(llmErr.HTTPStatus()).JSON(dto.SelfTestResponse{
			Success: false,
			Message: llmErr.Error(),
		})
	}
	return ctx.JSON(res)
}

// Stats returns aggregated triage counters
// @Summary Triage counters
// @Tags AI
// @Security BearerAuth
// @Produce json
// @Success 200 {object} serverutils.BaseResponse[dto.TriageStatsResponse]
// @Router /api/ai/stats [get]
func (c *triageController) Stats(ctx *fiber.Ctx) error {
	res, err := c.triageService.Stats(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Failed to read triage stats"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Triage stats retrieved", res))
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	llmErr := llm.AsError(err)
	status := llmErr.HTTPStatus()
	return ctx.Status(status).JSON(serverutils.ErrorResponse(status, llmErr.Error()))
}
