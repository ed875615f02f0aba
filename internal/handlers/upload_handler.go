package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"compilex/configs"
	"compilex/dto"
	"compilex/model"
	"compilex/services"
)

type UploadHandler struct {
	Service *services.UploadService
}

func uploadError(c *fiber.Ctx, err error) error {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": conflict.Message,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidType):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
}

// Create godoc
// @Summary      Create an upload
// @Description  Multipart form: type plus type-specific fields, files under "file".
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Success      201 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{} "duplicate merged into contributors"
// @Router       /uploads [post]
func (h *UploadHandler) Create(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}

	var req dto.CreateUploadReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Upload type is required",
		})
	}

	files, err := formFiles(c)
	if err != nil {
		return err
	}

	view, err := h.Service.Create(c.Context(), uid, req, files)
	if err != nil {
		return uploadError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Uploaded successfully!",
		"upload":  view,
	})
}

func formFiles(c *fiber.Ctx) ([]services.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// plain JSON body, no files
		return nil, nil
	}

	headers := form.File["file"]
	if len(headers) > configs.MaxUploadFiles {
		headers = headers[:configs.MaxUploadFiles]
	}

	files := make([]services.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unreadable file "+fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unreadable file "+fh.Filename)
		}
		files = append(files, services.UploadedFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return files, nil
}

// InfoFeed godoc
// @Summary      Info-post feed, newest first
// @Tags         uploads
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /uploads [get]
func (h *UploadHandler) InfoFeed(c *fiber.Ctx) error {
	return h.feed(c, model.TypeInfo)
}

// ProjectFeed godoc
// @Summary      Project feed, newest first
// @Tags         uploads
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/projects [get]
func (h *UploadHandler) ProjectFeed(c *fiber.Ctx) error {
	return h.feed(c, model.TypeProject)
}

func (h *UploadHandler) feed(c *fiber.Ctx, postType string) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	posts, err := h.Service.Feed(c.Context(), postType, uid)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "posts": posts})
}

func (h *UploadHandler) ListAll(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	uploads, err := h.Service.ListAll(c.Context(), uid)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "uploads": uploads})
}

func (h *UploadHandler) MyUploads(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	uploads, err := h.Service.ListByUser(c.Context(), uid)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "uploads": uploads})
}

// GetByID godoc
// @Summary      Get one post with resolved comments
// @Tags         uploads
// @Produce      json
// @Param        id path string true "post id"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id} [get]
func (h *UploadHandler) GetByID(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.Service.Get(c.Context(), id, uid)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "post": view})
}

func (h *UploadHandler) Update(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch dto.UpdateUploadReq
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	view, err := h.Service.Update(c.Context(), id, uid, patch)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Upload updated", "upload": view})
}

// Delete godoc
// @Summary      Delete own upload and its stored files
// @Tags         uploads
// @Produce      json
// @Param        id path string true "post id"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id} [delete]
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Context(), id, uid); err != nil {
		return uploadError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Upload deleted successfully"})
}

// Download redirects to the stored file, forcing a download filename.
func (h *UploadHandler) Download(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	file, err := h.Service.PrimaryFile(c.Context(), id)
	if err != nil {
		return uploadError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.Redirect(file.URL, fiber.StatusFound)
}

// Subjects godoc
// @Summary      Subject autocomplete
// @Tags         uploads
// @Produce      json
// @Param        branch query string true "branch"
// @Param        semester query int true "semester"
// @Param        q query string false "substring filter"
// @Success      200 {array} string
// @Router       /uploads/subjects [get]
func (h *UploadHandler) Subjects(c *fiber.Ctx) error {
	semester, _ := strconv.Atoi(c.Query("semester"))
	subjects, err := h.Service.Subjects(c.Context(), c.Query("branch"), semester, c.Query("q"))
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(subjects)
}

func (h *UploadHandler) SubjectList(c *fiber.Ctx) error {
	semester, _ := strconv.Atoi(c.Query("semester"))
	groups, err := h.Service.SubjectGroups(c.Context(), c.Query("branch"), semester)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(groups)
}
