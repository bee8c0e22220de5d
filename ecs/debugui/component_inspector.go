package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ecsframe/ecs"
)

// NewComponentInspector creates an inspector with no selection.
func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

// Render draws every component of the selected entity. Edits are written
// straight into the store rows; they are not structural changes.
func (ci *ComponentInspector) Render(w *ecs.World, selectedEntityId ecs.EntityId, selected bool) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if !selected {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}
	ci.selectedEntityId = selectedEntityId

	if !w.IsLive(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %d is not live", ci.selectedEntityId))
		imgui.End()
		return
	}

	held := w.Storage().ComponentsOf(ci.selectedEntityId)
	imgui.Text(fmt.Sprintf("Entity ID: %d", ci.selectedEntityId))
	imgui.Text(fmt.Sprintf("Components: %d", len(held)))
	imgui.Separator()

	for _, store := range held {
		component, ok := w.Storage().Component(store.Id, ci.selectedEntityId)
		if !ok {
			continue
		}

		if imgui.TreeNodeStr(store.Name) {
			ci.renderComponent(component)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(component any) {
	val := reflect.ValueOf(component)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		imgui.Text(fmt.Sprintf("%v", component))
		return
	}
	val = val.Elem()

	if val.Kind() != reflect.Struct {
		ci.renderField("value", val, false)
		return
	}

	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		ci.renderField(field.Name, val.Field(field.Index), field.IsPointer)
	}
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value, isPointer bool) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if isPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	label := fmt.Sprintf("##%s", name)

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(label, &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range globalReflectionCache.GetFields(val.Type()) {
				ci.renderField(nf.Name, val.Field(nf.Index), nf.IsPointer)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}
