package debugui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ecsframe/ecs"
)

// EntityInfo is one row of the entity browser table.
type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []string
	ComponentCount int
}

// EntityBrowserCache holds the flattened entity list between frames. It is
// rebuilt when the live entity count or the total row count changes.
type EntityBrowserCache struct {
	entities      []EntityInfo
	lastLive      int
	lastRows      int
	sortColumn    int
	sortAscending bool
}

// NewEntityBrowser creates a browser showing maxEntitiesPerPage rows per
// page; values below one fall back to 100.
func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	if maxEntitiesPerPage <= 0 {
		maxEntitiesPerPage = 100
	}
	return &EntityBrowser{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

// Render draws the browser window for w.
func (eb *EntityBrowser) Render(w *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(w)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.currentPage = 0
	}
	imgui.SameLine()
	if imgui.Button("Refresh") {
		eb.cache.entities = nil
		eb.rebuildCacheIfNeeded(w)
	}

	filteredEntities := eb.getFilteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx, endIdx := eb.pageBounds(len(filteredEntities))
		for i := startIdx; i < endIdx; i++ {
			entity := filteredEntities[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(strconv.Itoa(int(entity.ID)), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(entity.ID)
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := eb.totalPages(len(filteredEntities))
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowser) totalPages(n int) int {
	return (n + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
}

func (eb *EntityBrowser) pageBounds(n int) (int, int) {
	if pages := eb.totalPages(n); eb.currentPage >= pages {
		eb.currentPage = max(pages-1, 0)
	}
	start := eb.currentPage * eb.maxEntitiesPerPage
	end := min(start+eb.maxEntitiesPerPage, n)
	return start, end
}

func (eb *EntityBrowser) rebuildCacheIfNeeded(w *ecs.World) {
	live := w.Entities().Count()
	rows := 0
	for _, store := range w.Storage().Stores() {
		rows += store.Len
	}

	if eb.cache.lastLive != live || eb.cache.lastRows != rows {
		eb.cache.entities = nil
		eb.cache.lastLive = live
		eb.cache.lastRows = rows
	}

	if eb.cache.entities == nil {
		eb.rebuildCache(w)
	}
}

func (eb *EntityBrowser) rebuildCache(w *ecs.World) {
	eb.cache.entities = make([]EntityInfo, 0, w.Entities().Count())

	for id := range w.Entities().Iter() {
		held := w.Storage().ComponentsOf(id)
		componentTypes := make([]string, len(held))
		for i, store := range held {
			componentTypes[i] = store.Name
		}

		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             id,
			ComponentTypes: componentTypes,
			ComponentCount: len(componentTypes),
		})
	}

	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	less := func(a, b EntityInfo) bool {
		switch eb.cache.sortColumn {
		case 1:
			return strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 2:
			return a.ComponentCount < b.ComponentCount
		default:
			return a.ID < b.ID
		}
	}

	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		if !eb.cache.sortAscending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func (eb *EntityBrowser) getFilteredEntities() []EntityInfo {
	if eb.filterText == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		idStr := strconv.Itoa(int(entity.ID))
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) && !strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}

// Select marks id as the entity shown by the inspector.
func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selectedEntityId = id
	eb.hasSelection = true
}

// GetSelectedEntity returns the selected entity, if any.
func (eb *EntityBrowser) GetSelectedEntity() (ecs.EntityId, bool) {
	return eb.selectedEntityId, eb.hasSelection
}
