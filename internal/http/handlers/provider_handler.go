package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tiendasur/internal/feeds"
	"tiendasur/internal/ingest"
	applog "tiendasur/internal/log"
	"tiendasur/internal/store"
)

// onDemandErrorCap bounds the error list of manually triggered syncs so the
// response body stays readable; the scheduler runs uncapped.
const onDemandErrorCap = 100

type ProviderHandler struct {
	Providers *store.ProviderStore
	Engine    *ingest.Engine
}

func (h *ProviderHandler) List(c *fiber.Ctx) error {
	items, err := h.Providers.List()
	if err != nil {
		applog.Error(c, "providers.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not list providers")
	}
	return ok(c, fiber.Map{"items": items})
}

// SyncElit handles POST /providers/sync/elit?source=json|csv&dry=0|1&limit=&offset=&skip=&max=.
func (h *ProviderHandler) SyncElit(c *fiber.Ctx) error {
	source := c.Query("source", ingest.SourceCSV)
	if source != ingest.SourceJSON && source != ingest.SourceCSV {
		return fail(c, fiber.StatusBadRequest, "source must be json or csv")
	}

	errCap := onDemandErrorCap
	opts := ingest.Options{
		Source:               source,
		DryRun:               c.Query("dry") == "1",
		Limit:                atoi(c.Query("limit")),
		Offset:               atoi(c.Query("offset")),
		Skip:                 atoi(c.Query("skip")),
		Max:                  atoi(c.Query("max")),
		MaxErrorsBeforeAbort: &errCap,
	}

	summary, err := h.Engine.Sync(c.Context(), feeds.Elit(), opts)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSyncRunning):
			return fail(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, feeds.ErrMissingConfig):
			return fail(c, fiber.StatusBadRequest, err.Error())
		default:
			applog.Error(c, "providers.sync.fail", err, map[string]any{"source": source})
			return fail(c, fiber.StatusBadGateway, err.Error())
		}
	}

	applog.Audit(c, "providers.sync", map[string]any{
		"source": source, "dry": summary.DryRun, "imported": summary.Imported,
	})
	return ok(c, fiber.Map{
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
		"pruned":   summary.Pruned,
		"deduped":  summary.Deduped,
		"errors":   summary.Errors,
		"dry":      summary.DryRun,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
		"skip":     opts.Skip,
		"max":      opts.Max,
	})
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
