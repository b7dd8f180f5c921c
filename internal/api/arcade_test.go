package api

import (
	"fmt"
	"net/http"
	"testing"

	"arcade_finder/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArcadeCreate(t *testing.T) {
	t.Run("failure: requires authentication", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(t, r, http.MethodPost, "/api/arcades", "", gin.H{"name": "Barcade"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("failure: name is required", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")

		w := doRequest(t, r, http.MethodPost, "/api/arcades", token, gin.H{"address": "1 Main St"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success: create then read back identical fields", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")
		id := createArcade(t, r, token, "Barcade")

		w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/arcades/%d", id), "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Arcade domain.Arcade `json:"arcade"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "Barcade", resp.Arcade.Name)
		assert.Equal(t, "1 Main St", resp.Arcade.Address)
		assert.Equal(t, "Mon-Sat", resp.Arcade.DaysOpen)
		assert.Equal(t, "12pm-2am", resp.Arcade.HoursOfOperation)
		assert.True(t, resp.Arcade.ServesAlcohol)
	})
}

func TestArcadeGet(t *testing.T) {
	t.Run("failure: unknown id", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(t, r, http.MethodGet, "/api/arcades/999", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success: second read comes from cache", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")
		id := createArcade(t, r, token, "Barcade")

		first := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/arcades/%d", id), "", nil)
		second := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/arcades/%d", id), "", nil)

		var a, b struct {
			Arcade domain.Arcade `json:"arcade"`
			Cached bool          `json:"cached"`
		}
		decodeBody(t, first, &a)
		decodeBody(t, second, &b)
		assert.False(t, a.Cached)
		assert.True(t, b.Cached)
		assert.Equal(t, a.Arcade, b.Arcade, "cache must serve the same record")
	})
}

func TestArcadeList(t *testing.T) {
	t.Run("average rating is 0 with no comments, one-decimal otherwise", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")
		quiet := createArcade(t, r, token, "Quiet Arcade")
		rated := createArcade(t, r, token, "Rated Arcade")

		for _, rating := range []int{3, 5} {
			w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/arcades/%d/comments", rated), token, gin.H{
				"comment": "fun",
				"rating":  rating,
			})
			require.Equal(t, http.StatusOK, w.Code, "comment creation failed: %s", w.Body.String())
		}

		w := doRequest(t, r, http.MethodGet, "/api/arcades", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Arcades []ArcadeWithRating `json:"arcades"`
		}
		decodeBody(t, w, &resp)
		require.Len(t, resp.Arcades, 2)
		byID := map[uint]ArcadeWithRating{}
		for _, a := range resp.Arcades {
			byID[a.ID] = a
		}
		assert.Equal(t, 0.0, byID[quiet].AverageRating)
		assert.Equal(t, 4.0, byID[rated].AverageRating)
	})

	t.Run("listing cache is invalidated by writes", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")
		createArcade(t, r, token, "First")

		warm := doRequest(t, r, http.MethodGet, "/api/arcades", "", nil)
		cachedRead := doRequest(t, r, http.MethodGet, "/api/arcades", "", nil)
		createArcade(t, r, token, "Second")
		afterWrite := doRequest(t, r, http.MethodGet, "/api/arcades", "", nil)

		var a, b, c struct {
			Arcades []ArcadeWithRating `json:"arcades"`
			Cached  bool               `json:"cached"`
		}
		decodeBody(t, warm, &a)
		decodeBody(t, cachedRead, &b)
		decodeBody(t, afterWrite, &c)
		assert.False(t, a.Cached)
		assert.True(t, b.Cached)
		assert.False(t, c.Cached, "write must drop the listing cache")
		assert.Len(t, c.Arcades, 2)
	})
}

func TestArcadeUpdate(t *testing.T) {
	t.Run("failure: unknown id", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")

		w := doRequest(t, r, http.MethodPut, "/api/arcades/999", token, gin.H{"name": "Renamed"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success: any authenticated user may edit", func(t *testing.T) {
		r, _ := setupTest(t)
		owner := registerUser(t, r, "alice", "alice@example.com")
		id := createArcade(t, r, owner, "Barcade")
		other := registerUser(t, r, "bob", "bob@example.com")

		w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/arcades/%d", id), other, gin.H{
			"name":               "Renamed",
			"address":            "2 Side St",
			"days_open":          "Fri-Sun",
			"hours_of_operation": "6pm-midnight",
			"serves_alcohol":     false,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Arcade domain.Arcade `json:"arcade"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "Renamed", resp.Arcade.Name)
		assert.False(t, resp.Arcade.ServesAlcohol)

		// The cached copy must not survive the edit
		read := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/arcades/%d", id), "", nil)
		decodeBody(t, read, &resp)
		assert.Equal(t, "Renamed", resp.Arcade.Name)
	})
}

func TestArcadeDelete(t *testing.T) {
	t.Run("failure: unknown id", func(t *testing.T) {
		r, _ := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")

		w := doRequest(t, r, http.MethodDelete, "/api/arcades/999", token, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success: returns the deleted record and removes its comments", func(t *testing.T) {
		r, db := setupTest(t)
		token := registerUser(t, r, "alice", "alice@example.com")
		id := createArcade(t, r, token, "Barcade")
		w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/arcades/%d/comments", id), token, gin.H{
			"comment": "fun",
			"rating":  4,
		})
		require.Equal(t, http.StatusOK, w.Code)

		del := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/arcades/%d", id), token, nil)

		assert.Equal(t, http.StatusOK, del.Code)
		var resp struct {
			Arcade domain.Arcade `json:"arcade"`
		}
		decodeBody(t, del, &resp)
		assert.Equal(t, "Barcade", resp.Arcade.Name)

		read := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/arcades/%d", id), "", nil)
		assert.Equal(t, http.StatusNotFound, read.Code)

		var orphans int64
		require.NoError(t, db.Model(&domain.Comment{}).Where("arcade_id = ?", id).Count(&orphans).Error)
		assert.Zero(t, orphans, "comments must not outlive their arcade")
	})
}
