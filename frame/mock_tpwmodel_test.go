package frame

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// MockTPWModel is a gomock-style mock of TPWModel, hand-written in the
// shape mockgen produces (EXPECT()/recorder pattern) since TPWModel is a
// single-method external-collaborator interface worth scripting per call
// rather than faking with a fixed struct.
type MockTPWModel struct {
	ctrl     *gomock.Controller
	recorder *MockTPWModelMockRecorder
}

type MockTPWModelMockRecorder struct {
	mock *MockTPWModel
}

func NewMockTPWModel(ctrl *gomock.Controller) *MockTPWModel {
	m := &MockTPWModel{ctrl: ctrl}
	m.recorder = &MockTPWModelMockRecorder{m}
	return m
}

func (m *MockTPWModel) EXPECT() *MockTPWModelMockRecorder { return m.recorder }

func (m *MockTPWModel) GetRotationAt(tick topology.Tick) (rotation.Quaternion, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetRotationAt", tick)
	q, _ := ret[0].(rotation.Quaternion)
	ok, _ := ret[1].(bool)
	return q, ok
}

func (mr *MockTPWModelMockRecorder) GetRotationAt(tick interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetRotationAt", reflect.TypeOf((*MockTPWModel)(nil).GetRotationAt), tick)
}
