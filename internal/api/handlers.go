package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/galaxykit/holocron/internal/catalog"
	"github.com/galaxykit/holocron/internal/schema"
	"github.com/galaxykit/holocron/internal/source"
	"github.com/galaxykit/holocron/internal/syncer"
)

// catalogFor resolves the {entity} path segment against the schema registry.
// Unknown entities get a 404 and a nil catalog.
func (s *Server) catalogFor(w http.ResponseWriter, r *http.Request) *catalog.Catalog {
	route := r.PathValue("entity")
	sc, ok := schema.Lookup(route)
	if !ok {
		writeMsg(w, http.StatusNotFound, "unknown entity: "+route)
		return nil
	}
	return s.store.Catalog(sc)
}

// recordID parses the {id} path segment. Non-numeric ids are treated the same
// as absent records.
func recordID(w http.ResponseWriter, r *http.Request, sc schema.Schema) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMsg(w, http.StatusNotFound, sc.Name+" not found")
		return 0, false
	}
	return id, true
}

// handleSync performs a full reconciliation of one entity from upstream.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}
	sc := cat.Schema()

	startURL := s.config.UpstreamBaseURL + sc.UpstreamPath
	result, err := s.engine.Run(r.Context(), sc, startURL)
	if err != nil {
		log := logFor(r.Context())
		switch {
		case errors.Is(err, syncer.ErrSyncInProgress):
			writeMsg(w, http.StatusConflict, "sync already running for "+sc.Route)
		case isFetchError(err):
			log.Error("sync upstream failure", "entity", sc.Route, "err", err)
			writeMsg(w, http.StatusBadGateway, "upstream fetch failed")
		default:
			log.Error("sync failed", "entity", sc.Route, "err", err)
			writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	resp := map[string]any{
		"message":      "Data fetched and inserted successfully",
		"totalRecords": result.Ingested,
	}
	if result.Skipped > 0 {
		resp["skippedRecords"] = result.Skipped
	}
	writeJSON(w, http.StatusOK, resp)
}

func isFetchError(err error) bool {
	var fe *source.FetchError
	return errors.As(err, &fe)
}

// handleList serves filtered, sorted, paginated rows plus the total count
// matching the filter.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}

	q := catalog.ParseQuery(cat.Schema(), r.URL.Query())
	rows, total, err := cat.List(q)
	if err != nil {
		logFor(r.Context()).Error("list failed", "entity", cat.Schema().Route, "err", err)
		writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if rows == nil {
		rows = []catalog.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"rows":       rows,
			"totalCount": total,
		},
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}
	sc := cat.Schema()
	id, ok := recordID(w, r, sc)
	if !ok {
		return
	}

	rec, err := cat.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, sc.Name+" not found")
			return
		}
		logFor(r.Context()).Error("get failed", "entity", sc.Route, "id", id, "err", err)
		writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}
	sc := cat.Schema()

	raw, ok := decodeBody(w, r)
	if !ok {
		return
	}

	rec, err := cat.Create(raw)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrConflict):
			writeMsg(w, http.StatusConflict, sc.Name+" already exists")
		case errors.Is(err, catalog.ErrMissingNaturalKey):
			writeMsg(w, http.StatusBadRequest, sc.NaturalKey+" is required")
		case errors.Is(err, catalog.ErrInvalidField):
			writeMsg(w, http.StatusBadRequest, "invalid field value")
		default:
			logFor(r.Context()).Error("create failed", "entity", sc.Route, "err", err)
			writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}
	sc := cat.Schema()
	id, ok := recordID(w, r, sc)
	if !ok {
		return
	}

	raw, ok := decodeBody(w, r)
	if !ok {
		return
	}

	rec, err := cat.Update(id, raw)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeMsg(w, http.StatusNotFound, sc.Name+" not found")
		case errors.Is(err, catalog.ErrConflict):
			writeMsg(w, http.StatusConflict, sc.Name+" already exists")
		case errors.Is(err, catalog.ErrInvalidField):
			writeMsg(w, http.StatusBadRequest, "invalid field value")
		default:
			logFor(r.Context()).Error("update failed", "entity", sc.Route, "id", id, "err", err)
			writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"msg":  sc.Name + " updated successfully",
		"data": rec,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogFor(w, r)
	if cat == nil {
		return
	}
	sc := cat.Schema()
	id, ok := recordID(w, r, sc)
	if !ok {
		return
	}

	if err := cat.Delete(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, sc.Name+" not found")
			return
		}
		logFor(r.Context()).Error("delete failed", "entity", sc.Route, "id", id, "err", err)
		writeMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeMsg(w, http.StatusOK, sc.Name+" deleted successfully")
}

// decodeBody reads a JSON object body, rejecting malformed input. Field
// validation against the schema happens in the catalog; unknown keys are
// ignored there.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&raw); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return raw, true
}
