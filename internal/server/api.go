package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BearMapper/BearDeterrenceMap/internal/bears"
	"github.com/BearMapper/BearDeterrenceMap/internal/deterrent"
	"github.com/BearMapper/BearDeterrenceMap/internal/drawings"
	"github.com/BearMapper/BearDeterrenceMap/internal/geo"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.drawings.Markers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if markers == nil {
		markers = []drawings.Marker{}
	}
	writeJSON(w, http.StatusOK, markers)
}

func (s *Server) handleSaveMarker(w http.ResponseWriter, r *http.Request) {
	var m drawings.Marker
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid marker JSON: "+err.Error())
		return
	}
	saved, err := s.drawings.SaveMarker(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast("markers")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.drawings.DeleteMarker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "marker not found")
		return
	}
	s.hub.Broadcast("markers")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllMarkers(w http.ResponseWriter, r *http.Request) {
	if err := s.drawings.DeleteAllMarkers(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast("markers")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPolygons(w http.ResponseWriter, r *http.Request) {
	polygons, err := s.drawings.Polygons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if polygons == nil {
		polygons = []drawings.Polygon{}
	}
	writeJSON(w, http.StatusOK, polygons)
}

func (s *Server) handleSavePolygon(w http.ResponseWriter, r *http.Request) {
	var p drawings.Polygon
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid polygon JSON: "+err.Error())
		return
	}
	if len(p.Coordinates) < 3 {
		writeError(w, http.StatusBadRequest, "polygon needs at least three vertices")
		return
	}
	saved, err := s.drawings.SavePolygon(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast("polygons")
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleRenamePolygon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"name\": \"...\"}")
		return
	}
	renamed, err := s.drawings.UpdatePolygonName(r.Context(), chi.URLParam(r, "id"), body.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !renamed {
		writeError(w, http.StatusNotFound, "polygon not found")
		return
	}
	s.hub.Broadcast("polygons")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePolygon(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.drawings.DeletePolygon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "polygon not found")
		return
	}
	s.hub.Broadcast("polygons")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllPolygons(w http.ResponseWriter, r *http.Request) {
	if err := s.drawings.DeleteAllPolygons(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.Broadcast("polygons")
	w.WriteHeader(http.StatusNoContent)
}

// handleSaveDrawings accepts the GeoJSON FeatureCollection the draw toolbar
// exports and persists its points and polygons in one call.
func (s *Server) handleSaveDrawings(w http.ResponseWriter, r *http.Request) {
	var fc geo.FeatureCollection
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid GeoJSON: "+err.Error())
		return
	}
	result, err := s.drawings.SaveFeatureCollection(r.Context(), fc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(result.Markers) > 0 {
		s.hub.Broadcast("markers")
	}
	if len(result.Polygons) > 0 {
		s.hub.Broadcast("polygons")
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if devices == nil {
		devices = []deterrent.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleNearestDevices(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
	}

	devices, err := s.devices.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	index, err := deterrent.NewIndex(devices)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	nearest := index.Nearest(lat, lng, n)
	if nearest == nil {
		nearest = []deterrent.Device{}
	}
	writeJSON(w, http.StatusOK, nearest)
}

func (s *Server) handleDeviceImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	device, err := s.devices.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if device == nil {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}

	q := r.URL.Query()
	filter := deterrent.ImageFilter{Type: q.Get("type")}
	if v := q.Get("start"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC3339")
			return
		}
		filter.Start = &ts
	}
	if v := q.Get("end"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC3339")
			return
		}
		filter.End = &ts
	}
	if q.Get("start_hour") != "" || q.Get("end_hour") != "" {
		startHour, err1 := strconv.Atoi(q.Get("start_hour"))
		endHour, err2 := strconv.Atoi(q.Get("end_hour"))
		if err1 != nil || err2 != nil || startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 {
			writeError(w, http.StatusBadRequest, "start_hour and end_hour must both be hours 0-23")
			return
		}
		filter.StartHour, filter.EndHour = startHour, endHour
		filter.FilterHours = true
	}
	filter.IncludeUnsuccessful = q.Get("include_unsuccessful") == "true"
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	images, err := s.devices.Images(r.Context(), id, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if images == nil {
		images = []deterrent.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (s *Server) handleListBears(w http.ResponseWriter, r *http.Request) {
	list, err := s.bears.Bears(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []bears.Bear{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleBearTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bears.TrackFilter{
		Name:   q.Get("name"),
		Season: q.Get("season"),
	}
	if v := q.Get("start"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC3339")
			return
		}
		filter.Start = &ts
	}
	if v := q.Get("end"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC3339")
			return
		}
		filter.End = &ts
	}
	if (filter.Start == nil) != (filter.End == nil) {
		writeError(w, http.StatusBadRequest, "start and end must be given together")
		return
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	records, err := s.bears.Track(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []bears.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
