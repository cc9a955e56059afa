package devserver

import "net/http"

// The dropdown surface is server-owned in production; the dev server
// ships a fixed set broad enough to exercise every client form.

type listItem struct {
	Item string `json:"item"`
}

var (
	activityList = items(
		"Pickup",
		"Delivery",
		"Fuel",
		"Break",
		"Waiting for dock",
		"Waiting for load",
	)
	primaryList = items("Start Day", "Finish Day")
	waitingList = items("Waiting for dock", "Waiting for load", "Waiting at border")
	loadTypes   = items("Pallet", "Box", "Tote", "Bulk")
	truckList   = items("TRK-12", "TRK-14", "TRK-21")
	trailerList = items("TRL-7", "TRL-9", "TRL-11")
)

func items(values ...string) []listItem {
	out := make([]listItem, 0, len(values))
	for _, v := range values {
		out = append(out, listItem{Item: v})
	}
	return out
}

func (s *Server) handleActivityDropdowns(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeInvalid(w)
		return
	}
	writeJSON(w, envelope{Data: map[string]any{
		"code":         "success",
		"activitylist": activityList,
		"primarylist":  primaryList,
		"waitinglist":  waitingList,
	}})
}

func (s *Server) handleLoadTypes(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeInvalid(w)
		return
	}
	writeJSON(w, envelope{Data: map[string]any{
		"code":      "success",
		"loadtypes": loadTypes,
	}})
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeInvalid(w)
		return
	}
	writeJSON(w, envelope{Data: map[string]any{
		"code":        "success",
		"trucklist":   truckList,
		"trailerlist": trailerList,
	}})
}
