package api

import (
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/sse"
)

// Services groups the services the handlers call.
type Services struct {
	Catalog   *service.CatalogService
	Search    *service.SearchService
	WatchList *service.WatchListService
	Events    *sse.Manager // optional; enables the event stream
}
