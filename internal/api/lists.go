package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// Dropdowns are the server-driven activity allow-lists. The server owns
// their membership; the client never hardcodes activity types.
//
// Activity feeds the ordinary add-activity form, Primary the start/finish
// forms, and Waiting the waiting-period form.
type Dropdowns struct {
	Activity domain.AllowList
	Primary  domain.AllowList
	Waiting  domain.AllowList
}

// Equipment are the truck and trailer lists for the start/finish forms.
type Equipment struct {
	Trucks   []string
	Trailers []string
}

// listItem is the wire shape of one dropdown entry.
type listItem struct {
	Item string `json:"item"`
}

type dropdownResponse struct {
	Data *struct {
		ActivityList []listItem `json:"activitylist"`
		PrimaryList  []listItem `json:"primarylist"`
		WaitingList  []listItem `json:"waitinglist"`
	} `json:"data"`
}

type loadTypesResponse struct {
	Data *struct {
		LoadTypes []listItem `json:"loadtypes"`
	} `json:"data"`
}

type equipmentResponse struct {
	Data *struct {
		TruckList   []listItem `json:"trucklist"`
		TrailerList []listItem `json:"trailerlist"`
	} `json:"data"`
}

// ActivityDropdowns fetches the three activity allow-lists.
func (c *Client) ActivityDropdowns(ctx context.Context) (Dropdowns, error) {
	var resp dropdownResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/tripactivitydropdown.php", nil), nil, &resp); err != nil {
		return Dropdowns{}, fmt.Errorf("api.Client.ActivityDropdowns: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return Dropdowns{}, fmt.Errorf("api.Client.ActivityDropdowns: %w: missing data envelope", domain.ErrRemote)
	}
	return Dropdowns{
		Activity: itemsToList(resp.Data.ActivityList),
		Primary:  itemsToList(resp.Data.PrimaryList),
		Waiting:  itemsToList(resp.Data.WaitingList),
	}, nil
}

// LoadTypes fetches the load type allow-list.
func (c *Client) LoadTypes(ctx context.Context) (domain.AllowList, error) {
	var resp loadTypesResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/loadtypesdropdown.php", nil), nil, &resp); err != nil {
		return nil, fmt.Errorf("api.Client.LoadTypes: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("api.Client.LoadTypes: %w: missing data envelope", domain.ErrRemote)
	}
	return itemsToList(resp.Data.LoadTypes), nil
}

// EquipmentLists fetches the truck and trailer lists.
func (c *Client) EquipmentLists(ctx context.Context) (Equipment, error) {
	var resp equipmentResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/equipmentlist.php", nil), nil, &resp); err != nil {
		return Equipment{}, fmt.Errorf("api.Client.EquipmentLists: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return Equipment{}, fmt.Errorf("api.Client.EquipmentLists: %w: missing data envelope", domain.ErrRemote)
	}
	return Equipment{
		Trucks:   itemsToList(resp.Data.TruckList),
		Trailers: itemsToList(resp.Data.TrailerList),
	}, nil
}

func itemsToList(items []listItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Item)
	}
	return out
}
