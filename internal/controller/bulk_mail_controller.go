// internal/controller/bulk_mail_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/mailforge/bulkmail-backend/internal/errors"
    "github.com/mailforge/bulkmail-backend/internal/repository"
    "github.com/mailforge/bulkmail-backend/internal/service"
)

type BulkMailController struct {
    Dispatch *service.DispatchService
    HistoryService *service.HistoryService
}

// SendBulk handles POST /api/send-bulk. A campaign whose sends failed
// is still a 201: the failure is encoded in the record, not the
// response code. Only validation and persistence problems are errors.
func (c *BulkMailController) SendBulk(w http.ResponseWriter, r *http.Request) {
    var body service.SendBulkRequest
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
        return
    }

    result, err := c.Dispatch.SendBulk(r.Context(), body)
    if err != nil {
        var ve *appErrors.ValidationError
        if errors.As(err, &ve) {
            writeError(w, http.StatusBadRequest, ve.Error())
            return
        }
        log.Println("[controller] bulk send error:", err)
        writeError(w, http.StatusInternalServerError, "Email sending failed")
        return
    }

    writeJSON(w, http.StatusCreated, map[string]interface{}{
        "success": true,
        "data":    result,
        "message": fmt.Sprintf("Processed %d recipient(s)", len(result.Recipients)),
    })
}

// History handles GET /api/history.
func (c *BulkMailController) History(w http.ResponseWriter, r *http.Request) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
    if page < 1 {
        page = 1
    }
    if limit < 1 {
        limit = 20
    }

    filter := repository.Filter{
        Status: r.URL.Query().Get("status"),
        Search: r.URL.Query().Get("search"),
    }
    sort := r.URL.Query().Get("sort")

    items, pagination, err := c.HistoryService.List(r.Context(), filter, page, limit, sort)
    if err != nil {
        log.Println("[controller] history fetch error:", err)
        writeError(w, http.StatusInternalServerError, "Failed to fetch email history")
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":    true,
        "data":       items,
        "pagination": pagination,
    })
}

// HistoryByID handles GET /api/history/{id}.
func (c *BulkMailController) HistoryByID(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    mail, err := c.HistoryService.GetByID(r.Context(), id)
    if err != nil {
        var nf *appErrors.NotFoundError
        if errors.As(err, &nf) {
            writeError(w, http.StatusNotFound, "Record not found")
            return
        }
        log.Println("[controller] record fetch error:", err)
        writeError(w, http.StatusInternalServerError, "Failed to fetch record")
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success": true,
        "data":    mail,
    })
}

// Recipients handles GET /api/recipients/{id}.
func (c *BulkMailController) Recipients(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    emails, err := c.HistoryService.GetRecipients(r.Context(), id)
    if err != nil {
        var nf *appErrors.NotFoundError
        if errors.As(err, &nf) {
            writeError(w, http.StatusNotFound, "Mail record not found")
            return
        }
        log.Println("[controller] recipient fetch error:", err)
        writeError(w, http.StatusInternalServerError, "Failed to fetch recipients")
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":    true,
        "recipients": emails,
    })
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(payload); err != nil {
        log.Println("[controller] failed to encode response:", err)
    }
}

func writeError(w http.ResponseWriter, status int, message string) {
    writeJSON(w, status, map[string]interface{}{
        "success": false,
        "error":   message,
    })
}
