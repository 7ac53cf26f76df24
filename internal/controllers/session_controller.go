package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/models"
	"food_routing_admin/internal/session"
)

// GetSession returns the open dialog, or {"state":"idle"}.
func GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session": app.Session()})
}

// OpenAdd opens an empty add dialog for :kind.
func OpenAdd(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := app.OnAddRequest(kind)
	if err != nil {
		respondError(c, "OpenAdd", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// OpenEdit opens an edit dialog on the stored record :kind/:key.
func OpenEdit(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := strconv.Atoi(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key"})
		return
	}
	snap, err := app.OnEditRequest(kind, key)
	if err != nil {
		respondError(c, "OpenEdit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// PatchDraft sets one or more draft fields from a {"field": "value"} body.
func PatchDraft(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	snap, err := app.OnFieldsChange(fields)
	if err != nil {
		respondError(c, "PatchDraft", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// SaveSession saves the open dialog. An optional {"field": "value"} body is
// laid over the draft first. The save only goes through if the dialog this
// request saw is still the open one.
func SaveSession(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	snap := app.Session()
	var draft session.Draft
	if len(fields) > 0 {
		var err error
		if draft, err = overlayDraft(snap, fields); err != nil {
			respondError(c, "SaveSession", err)
			return
		}
	}

	rec, err := app.OnSaveRequest(c.Request.Context(), snap.ID, draft)
	if err != nil {
		respondError(c, "SaveSession", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "session": app.Session()})
}

func overlayDraft(snap session.Snapshot, fields map[string]string) (session.Draft, error) {
	if snap.State == session.StateIdle {
		return nil, session.ErrNoSession
	}
	d, err := session.NewDraft(snap.Kind)
	if err != nil {
		return nil, err
	}
	for _, set := range []map[string]string{snap.Fields, fields} {
		for name, value := range set {
			if err := d.SetField(name, value); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// CancelSession closes the dialog without saving.
func CancelSession(c *gin.Context) {
	if err := app.OnCancelRequest(); err != nil {
		respondError(c, "CancelSession", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": app.Session()})
}
