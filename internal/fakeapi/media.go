package fakeapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

const (
	uploadField   = "image"
	maxUploadSize = 5 << 20
	cdnBase       = "https://res.cloudinary.test/glownatura"
)

type mediaUpdateRequest struct {
	Alt string `json:"alt"`
}

// usage returns the ids of the products showing an image at url
func (s *Server) usage(url string) []string {
	used := []string{}
	for _, p := range s.products.all() {
		for _, img := range p.Images {
			if img.URL == url {
				used = append(used, p.ID)
				break
			}
		}
	}
	return used
}

func (s *Server) withUsage(m *domain.Media) domain.Media {
	out := *m
	out.UsedIn = s.usage(m.Location())
	return out
}

// GET /api/media
//
// The media endpoint nests its page under data, unlike the other listings.
func (s *Server) listMedia(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := c.Query("search")
	var matched []*domain.Media
	for _, m := range s.media.all() {
		if search != "" && !containsFold(m.Filename, search) && !containsFold(m.Alt, search) {
			continue
		}
		matched = append(matched, m)
	}

	page, p := paginate(c, matched)
	items := make([]domain.Media, 0, len(page))
	for _, m := range page {
		items = append(items, s.withUsage(m))
	}
	response.Success(c, gin.H{"media": items, "pagination": p})
}

// GET /api/media/:id
func (s *Server) getMedia(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Media not found")
		return
	}
	response.Success(c, s.withUsage(m))
}

// POST /api/media
func (s *Server) uploadMedia(c *gin.Context) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		response.BadRequest(c, "No image file provided")
		return
	}
	if fh.Size > maxUploadSize {
		response.BadRequest(c, "Image must be 5MB or smaller")
		return
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
		response.BadRequest(c, "Only image files are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()
	size, err := io.Copy(io.Discard, f)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	m := &domain.Media{
		Filename: filepath.Base(fh.Filename),
		Mimetype: ct,
		Size:     size,
		UsedIn:   []string{},
	}
	m.ID = newID()
	m.PublicID = "glownatura/" + m.ID
	m.CloudinaryURL = fmt.Sprintf("%s/%s/%s", cdnBase, m.ID, m.Filename)
	m.CreatedAt = now
	m.UpdatedAt = now
	s.media.put(m.ID, m)

	c.JSON(http.StatusCreated, response.Response{Success: true, Message: "Image uploaded successfully", Data: []domain.Media{*m}})
}

// PUT /api/media/:id
func (s *Server) updateMedia(c *gin.Context) {
	var req mediaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Media not found")
		return
	}
	m.Alt = req.Alt
	m.UpdatedAt = s.now()
	response.Success(c, s.withUsage(m))
}

// DELETE /api/media/:id
func (s *Server) deleteMedia(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Media not found")
		return
	}
	if len(s.usage(m.Location())) > 0 {
		response.BadRequest(c, "Media is in use and cannot be deleted")
		return
	}
	s.media.remove(m.ID)
	response.SuccessMessage(c, "Media deleted successfully", nil)
}

// DELETE /api/media/bulk/unused
func (s *Server) deleteUnusedMedia(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, m := range s.media.all() {
		if len(s.usage(m.Location())) == 0 {
			s.media.remove(m.ID)
			deleted++
		}
	}
	response.SuccessMessage(c, fmt.Sprintf("%d unused media deleted", deleted), gin.H{"deletedCount": deleted})
}
