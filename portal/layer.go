package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/fsops"
	"github.com/cartops/proctools/logger"
)

// Layer is a hosted feature-service layer endpoint.
type Layer struct {
	site *Site
	url  string
}

// Layer returns a handle on the feature-service layer at layerURL.
func (s *Site) Layer(layerURL string) *Layer {
	return &Layer{site: s, url: strings.TrimRight(layerURL, "/")}
}

// Count returns the number of features matching the where clause. An empty
// clause counts every feature.
func (l *Layer) Count(ctx context.Context, where string) (int, error) {
	if where == "" {
		where = "1 = 1"
	}
	form := url.Values{}
	form.Set("where", where)
	form.Set("returnCountOnly", "true")

	var result struct {
		Count int `json:"count"`
	}
	if err := l.site.post(ctx, l.url+"/query", form, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// DeleteFeatures removes the features matching the where clause and returns
// the number removed. An empty clause deletes every feature.
//
// Large deletes can outlive the gateway timeout while the service keeps
// working. On a timeout the layer count is polled until it reaches zero (the
// only case the fallback can verify) rather than failing the run.
func (l *Layer) DeleteFeatures(ctx context.Context, where string, rollbackOnFailure bool) (int, error) {
	before, err := l.Count(ctx, "")
	if err != nil {
		return 0, err
	}
	if where == "" {
		where = "1 = 1"
	}
	form := url.Values{}
	form.Set("where", where)
	form.Set("rollbackOnFailure", strconv.FormatBool(rollbackOnFailure))

	err = l.site.post(ctx, l.url+"/deleteFeatures", form, nil)
	if errors.Is(err, errGatewayTimeout) {
		logger.Logger.Warnw("Delete timed out at gateway; polling for completion", "layer_url", l.url)
		err = l.awaitEmpty(ctx)
	}
	if err != nil {
		return 0, err
	}

	after, err := l.Count(ctx, "")
	if err != nil {
		return 0, err
	}
	deleted := before - after
	logger.Logger.Infow("Deleted features from layer", "layer_url", l.url, "deleted", deleted)
	return deleted, nil
}

// awaitEmpty polls the layer count until it reaches zero or the poll budget
// runs out.
func (l *Layer) awaitEmpty(ctx context.Context) error {
	for try := 0; try < l.site.deleteVerifyTries; try++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.site.deleteVerifyInterval):
		}
		count, err := l.Count(ctx, "")
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
	}
	return errors.Newf("delete on layer %s did not complete within poll budget", l.url)
}

// Truncate removes all features without logging individual deletes.
func (l *Layer) Truncate(ctx context.Context) error {
	return l.site.post(ctx, l.url+"/truncate", nil, nil)
}

// Append loads features into the layer from an uploaded file-geodatabase
// item.
func (l *Layer) Append(ctx context.Context, itemID, sourceTableName string) error {
	form := url.Values{}
	form.Set("appendItemId", itemID)
	form.Set("appendUploadFormat", "filegdb")
	form.Set("appendSourceTable", sourceTableName)
	form.Set("upserts", "false")
	return l.site.post(ctx, l.url+"/append", form, nil)
}

// UpdateAttribute sets field to value on the feature with the given object
// ID, but only when the stored value differs. Returns whether an edit was
// applied. A nil value clears the attribute.
func (l *Layer) UpdateAttribute(ctx context.Context, objectID int, field string, value any) (bool, error) {
	form := url.Values{}
	form.Set("where", fmt.Sprintf("OBJECTID = %d", objectID))
	form.Set("outFields", field)

	var result struct {
		Features []struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"features"`
	}
	if err := l.site.post(ctx, l.url+"/query", form, &result); err != nil {
		return false, err
	}
	if len(result.Features) != 1 {
		return false, errors.Newf("feature with object ID %d not found on layer", objectID)
	}
	if sameAttributeValue(result.Features[0].Attributes[field], value) {
		return false, nil
	}

	// The update is attribute-map based so value can be null.
	edit, err := json.Marshal([]map[string]any{{
		"attributes": map[string]any{"OBJECTID": objectID, field: value},
	}})
	if err != nil {
		return false, errors.Wrap(err, "encode attribute edit")
	}
	editForm := url.Values{}
	editForm.Set("updates", string(edit))
	editForm.Set("rollbackOnFailure", "true")
	if err := l.site.post(ctx, l.url+"/applyEdits", editForm, nil); err != nil {
		return false, err
	}
	return true, nil
}

// sameAttributeValue compares a decoded attribute against the caller's value
// through their string forms, so int 42 matches JSON's float64 42.
func sameAttributeValue(stored, value any) bool {
	if stored == nil || value == nil {
		return stored == nil && value == nil
	}
	return fmt.Sprint(stored) == fmt.Sprint(value)
}

// LoadResult classifies feature outcomes of a layer load.
type LoadResult string

const (
	ResultDeleted  LoadResult = "deleted"
	ResultInserted LoadResult = "inserted"
)

// tempItemTimeLayout names uploaded temp geodatabases by upload time.
const tempItemTimeLayout = "2006_01_02_T1504"

// LoadFeatureLayer refreshes the layer's features from a file geodatabase on
// disk: the geodatabase is zipped and uploaded as a temporary portal item,
// the layer truncated and appended from it, then the item deleted. Returns
// counts of features deleted and inserted.
func (l *Layer) LoadFeatureLayer(ctx context.Context, geodatabasePath, sourceTableName string) (map[LoadResult]int, error) {
	startTime := time.Now()
	layerName := strings.TrimSuffix(filepath.Base(geodatabasePath), ".gdb")
	logger.Logger.Infow("Start: Load feature layer", "layer", layerName, "geodatabase", geodatabasePath)
	states := map[LoadResult]int{}

	zipPath := geodatabasePath + ".zip"
	// Lock files are transient and a stale zip must not nest into the new one.
	if _, err := fsops.ArchiveFolder(geodatabasePath, zipPath, true, []string{".lock", ".zip"}); err != nil {
		return nil, err
	}
	defer os.Remove(zipPath)

	title := fmt.Sprintf("%s__Temp_%s", layerName, startTime.Format(tempItemTimeLayout))
	item, err := l.site.AddGeodatabaseItem(ctx, zipPath, title, []string{"Temporary"})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := l.site.DeleteItem(ctx, item); err != nil {
			logger.Logger.Warnw("Failed to delete temporary geodatabase item",
				"item_id", item.ID, "error", err)
		}
	}()

	before, err := l.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := l.Truncate(ctx); err != nil {
		return nil, err
	}
	states[ResultDeleted] = before

	if err := l.Append(ctx, item.ID, sourceTableName); err != nil {
		return nil, err
	}
	after, err := l.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	states[ResultInserted] = after

	for state, count := range states {
		logger.Logger.Infow("Features "+string(state), "count", count)
	}
	logger.Logger.Infow("End: Load", "elapsed", time.Since(startTime).String())
	return states, nil
}
