package control

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	corecontrol "github.com/kilianp07/dualportal/core/control"
	"github.com/kilianp07/dualportal/core/logger"
	"github.com/kilianp07/dualportal/core/model"
)

// Handler exposes the orchestrator over the REST contract consumed by the
// dashboard.
type Handler struct {
	orch *corecontrol.Orchestrator
	log  logger.Logger
}

// NewHandler creates the REST handler.
func NewHandler(orch *corecontrol.Orchestrator, log logger.Logger) *Handler {
	return &Handler{orch: orch, log: log}
}

// Register mounts all control routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/initialize", h.post(h.initialize))
	mux.HandleFunc("/api/energy_control", h.post(h.energyControl))
	mux.HandleFunc("/api/load_payload", h.post(h.loadPayload))
	mux.HandleFunc("/api/parameter_sweep", h.post(h.parameterSweep))
	mux.HandleFunc("/api/apply_optimal_parameters", h.post(h.applyOptimal))
	mux.HandleFunc("/api/scan_portal", h.post(h.scanPortal))
	mux.HandleFunc("/api/lock_portal", h.post(h.lockPortal))
	mux.HandleFunc("/api/unlock_portals", h.post(h.unlockPortals))
	mux.HandleFunc("/api/form_bridge", h.post(h.formBridge))
	mux.HandleFunc("/api/transfer_payload", h.post(h.transferPayload))
	mux.HandleFunc("/api/reset_system", h.post(h.resetSystem))
}

func (h *Handler) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) {
	snap := h.orch.Initialize()
	writeJSON(w, http.StatusOK, map[string]any{"status": snap.Status, "run_id": snap.RunID})
}

type energyRequest struct {
	PortalID int     `json:"portal_id"`
	Action   string  `json:"action"`
	Amount   float64 `json:"amount"`
}

func (h *Handler) energyControl(w http.ResponseWriter, r *http.Request) {
	var req energyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &corecontrol.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	id, err := model.ParsePortalID(req.PortalID)
	if err != nil {
		h.writeError(w, &corecontrol.ValidationError{Field: "portal_id", Reason: err.Error()})
		return
	}
	amount := req.Amount
	if amount == 0 {
		amount = 1000
	}
	var joules float64
	switch req.Action {
	case "on":
		joules, err = h.orch.Energy.SetEnergyState(id, true)
	case "off":
		joules, err = h.orch.Energy.SetEnergyState(id, false)
	case "increase":
		joules, err = h.orch.Energy.AdjustEnergy(id, amount)
	case "decrease":
		joules, err = h.orch.Energy.AdjustEnergy(id, -amount)
	default:
		err = &corecontrol.ValidationError{Field: "action", Reason: "must be on, off, increase or decrease"}
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "energyJoules": joules})
}

type payloadRequest struct {
	PortalID int     `json:"portal_id"`
	Volume   float64 `json:"volume"`
	Mass     float64 `json:"mass"`
	Material string  `json:"material"`
}

func (h *Handler) loadPayload(w http.ResponseWriter, r *http.Request) {
	var req payloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &corecontrol.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	id, err := model.ParsePortalID(req.PortalID)
	if err != nil {
		h.writeError(w, &corecontrol.ValidationError{Field: "portal_id", Reason: err.Error()})
		return
	}
	payload, err := h.orch.Payload.StagePayload(req.Material, req.Volume)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// The client echoes an optimistic mass; the server-derived value wins.
	if req.Mass != 0 && math.Abs(req.Mass-payload.MassKg) > 0.01 {
		h.log.Warnf("client mass %.2f differs from derived %.2f", req.Mass, payload.MassKg)
	}
	if err := h.orch.Payload.CommitPayload(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) parameterSweep(w http.ResponseWriter, r *http.Request) {
	cfg := model.SweepConfiguration{}
	var err error
	if cfg.EnergyRangeJ, err = queryFloat(r, "energy_range"); err != nil {
		h.writeError(w, err)
		return
	}
	if cfg.FreqRangeHz, err = queryFloat(r, "freq_range"); err != nil {
		h.writeError(w, err)
		return
	}
	results, err := h.orch.Sweep.RunSweep(r.Context(), cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	approval, err := h.orch.Sweep.Evaluate()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "approval": approval})
}

func (h *Handler) applyOptimal(w http.ResponseWriter, r *http.Request) {
	var req model.SweepResult
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &corecontrol.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if err := h.orch.Sweep.ApplyOptimal(req); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) scanPortal(w http.ResponseWriter, r *http.Request) {
	id, err := portalFromQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// A failed scan is still a 200: the outcome carries the error.
	outcome := h.orch.Scan.ScanPortal(r.Context(), id)
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) lockPortal(w http.ResponseWriter, r *http.Request) {
	id, err := portalFromQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	locked, err := h.orch.Lock.LockPortal(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locked": locked})
}

func (h *Handler) unlockPortals(w http.ResponseWriter, r *http.Request) {
	h.orch.Lock.UnlockAll()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) formBridge(w http.ResponseWriter, r *http.Request) {
	strength, err := h.orch.Bridge.FormBridge(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bridgeStrength": strength})
}

func (h *Handler) transferPayload(w http.ResponseWriter, r *http.Request) {
	result, err := h.orch.Bridge.TransferPayload()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                 true,
		"energy_transferred": result.EnergyTransferred,
		"energy_consumed":    result.EnergyConsumed,
		"payloads_cleared":   result.PayloadsCleared,
	})
}

func (h *Handler) resetSystem(w http.ResponseWriter, r *http.Request) {
	h.orch.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func portalFromQuery(r *http.Request) (model.PortalID, error) {
	raw := r.URL.Query().Get("portal_id")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &corecontrol.ValidationError{Field: "portal_id", Reason: "must be an integer"}
	}
	id, err := model.ParsePortalID(n)
	if err != nil {
		return 0, &corecontrol.ValidationError{Field: "portal_id", Reason: err.Error()}
	}
	return id, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &corecontrol.ValidationError{Field: key, Reason: "must be a number"}
	}
	return v, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case corecontrol.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, corecontrol.ErrSweepNotApproved),
		errors.Is(err, corecontrol.ErrAlreadyLocked),
		errors.Is(err, corecontrol.ErrInvalidState),
		errors.Is(err, corecontrol.ErrNoPendingPayload):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
