package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/library"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
	"github.com/bkarpinos/linkvault/internal/transfer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type linkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Folder      string   `json:"folder"`
	Tags        []string `json:"tags"`
	IsFavorite  bool     `json:"isFavorite"`
	ReadLater   bool     `json:"readLater"`
}

func (req linkRequest) params() link.Params {
	return link.Params{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Folder:      req.Folder,
		Tags:        req.Tags,
		IsFavorite:  req.IsFavorite,
		ReadLater:   req.ReadLater,
	}
}

type bulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type folderRequest struct {
	Name string `json:"name"`
}

type foldersRequest struct {
	Folders []string `json:"folders"`
}

type settingsRequest struct {
	DarkMode    *bool   `json:"darkMode"`
	Language    *string `json:"language"`
	ViewLayout  *string `json:"viewLayout"`
	CurrentView *string `json:"currentView"`
}

func (s *Server) writeLink(w http.ResponseWriter, status int, l link.Link) {
	s.writeJSON(w, status, storage.EncodeLink(l))
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	selector := q.Get("view")
	if selector == "" {
		selector = link.ViewAll
	}
	view, err := link.ParseView(selector)
	if err != nil {
		s.fail(w, r, errx.E("server.ListLinks", errx.Invalid, err))
		return
	}

	links := s.library.List(view, q.Get("search"))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"view":  view.String(),
		"links": storage.EncodeLinks(links),
	})
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[linkRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	l, err := s.library.Create(req.params())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeLink(w, http.StatusCreated, l)
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	l, err := s.library.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeLink(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[linkRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	l, err := s.library.Update(r.PathValue("id"), req.params())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeLink(w, http.StatusOK, l)
}

func (s *Server) handlePurgeLink(w http.ResponseWriter, r *http.Request) {
	if !s.confirmed(w, r) {
		return
	}
	if err := s.library.PermanentDelete(r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// linkAction adapts a single-link operation to a handler.
func (s *Server) linkAction(fn func(string) (link.Link, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := fn(r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeLink(w, http.StatusOK, l)
	}
}

func (s *Server) handleTrashLink(w http.ResponseWriter, r *http.Request) {
	s.linkAction(s.library.SoftDelete)(w, r)
}

func (s *Server) handleRestoreLink(w http.ResponseWriter, r *http.Request) {
	s.linkAction(s.library.Restore)(w, r)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s.linkAction(s.library.ToggleFavorite)(w, r)
}

func (s *Server) handleToggleReadLater(w http.ResponseWriter, r *http.Request) {
	s.linkAction(s.library.ToggleReadLater)(w, r)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[bulkRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var res library.BulkResult
	switch req.Action {
	case "trash":
		res, err = s.library.BulkSoftDelete(req.IDs)
	case "restore":
		res, err = s.library.BulkRestore(req.IDs)
	case "purge":
		if !s.confirmed(w, r) {
			return
		}
		res, err = s.library.PermanentDeleteMany(req.IDs)
	default:
		err = errx.Errorf("server.Bulk", errx.Invalid, "unknown action %q", req.Action)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEmptyTrash(w http.ResponseWriter, r *http.Request) {
	if !s.confirmed(w, r) {
		return
	}
	n, err := s.library.EmptyTrash()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"folders": s.library.Folders()})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[folderRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.library.CreateFolder(req.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string][]string{"folders": s.library.Folders()})
}

func (s *Server) handleReorderFolders(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[foldersRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	folders, err := s.library.ReorderFolders(req.Folders)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"folders": folders})
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	from := r.PathValue("name")
	req, err := decodeJSON[folderRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	moved, err := s.library.RenameFolder(from, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.repo.SwitchFolderView(from, link.FolderView(req.Name)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "folders": s.library.Folders()})
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	moved, err := s.library.DeleteFolder(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reset, err := s.repo.SwitchFolderView(name, link.View{Kind: link.KindAll})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"reassigned": moved, "viewReset": reset})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.repo.LoadSettings())
}

// handleUpdateSettings changes the fields present in the body and keeps
// the rest.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[settingsRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	settings, err := s.repo.UpdateSettings(func(cur *link.Settings) error {
		if req.DarkMode != nil {
			cur.DarkMode = *req.DarkMode
		}
		if req.Language != nil {
			cur.Language = link.Language(*req.Language)
		}
		if req.ViewLayout != nil {
			cur.ViewLayout = link.ViewLayout(*req.ViewLayout)
		}
		if req.CurrentView != nil {
			cur.CurrentView = *req.CurrentView
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.transfer.Export()
	date := snap.ExportDate
	if len(date) >= 10 {
		date = date[:10]
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="linkvault-backup-%s.json"`, date))
		s.writeJSON(w, http.StatusOK, snap)
	case "xlsx":
		var buf bytes.Buffer
		if err := transfer.WriteXLSX(&buf, transfer.ToWorkbook(snap)); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="linkvault-backup-%s.xlsx"`, date))
		_, _ = w.Write(buf.Bytes())
	default:
		s.fail(w, r, errx.Errorf("server.Export", errx.Invalid, "unknown format %q", format))
	}
}

// handleImport replaces all data with the uploaded snapshot. A spreadsheet
// is recognized by its content type; anything else is read as JSON.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.confirmed(w, r) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.fail(w, r, errx.E("server.Import", errx.Invalid, err))
		return
	}

	var snap *transfer.Snapshot
	if strings.HasPrefix(r.Header.Get("Content-Type"), xlsxContentType) {
		wb, err := transfer.ReadXLSX(bytes.NewReader(body))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		snap, err = s.transfer.ImportWorkbook(wb)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		snap, err = s.transfer.Import(body)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, snap.Summary())
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"version": transfer.Version,
		"backend": s.backend,
		"stats":   s.repo.Stats(),
	})
}
