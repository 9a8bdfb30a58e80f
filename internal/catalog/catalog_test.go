package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.Equal(t, 3, c.Len())
	p, err := c.Find(2)
	require.NoError(t, err)
	assert.Equal(t, "Conjunto Otoñal", p.Name)
	assert.Equal(t, int64(32000), p.Price)

	_, err = c.Find(99)
	assert.True(t, errors.Is(err, ErrUnknownProduct))
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, ErrEmptyCatalog))

	_, err = New([]domain.Product{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
	assert.True(t, errors.Is(err, ErrDuplicateProduct))
}

func TestProducts_ReturnsCopy(t *testing.T) {
	c := Default()
	ps := c.Products()
	ps[0].Price = 1

	p, _ := c.Find(1)
	assert.Equal(t, int64(27000), p.Price)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "products:\n  - id: 10\n    name: Bufanda\n    price: 9000\n  - id: 11\n    name: Gorro\n    price: 7000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []domain.Product{
		{ID: 10, Name: "Bufanda", Price: 9000},
		{ID: 11, Name: "Gorro", Price: 7000},
	}, c.Products())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Sweater NAREA","price":27000}]`))
	}))
	defer srv.Close()

	c, err := Fetch(context.Background(), NewProductClient(srv.URL+"/", time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	_, err = Fetch(context.Background(), NewProductClient(bad.URL, time.Second))
	assert.Error(t, err)
}
