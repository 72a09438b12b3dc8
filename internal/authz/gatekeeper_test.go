package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"service-route/internal/entities"
	"service-route/pkg/constants"
	"service-route/pkg/utils"
)

func TestGatekeeper_Can(t *testing.T) {
	g := NewGatekeeper()
	own := &entities.Request{ID: 1, EngineerID: utils.ToPtr(uint64(7))}
	foreign := &entities.Request{ID: 2, EngineerID: utils.ToPtr(uint64(8))}
	unassigned := &entities.Request{ID: 3}

	testCases := []struct {
		name       string
		ctx        Context
		permission string
		want       bool
	}{
		{"админ может всё", Context{ActorID: 1, Role: constants.RoleAdmin, Target: foreign}, RequestsAdmin, true},
		{"менеджер назначает", Context{ActorID: 2, Role: constants.RoleManager}, RequestsAssign, true},
		{"менеджер не правит в обход статусов", Context{ActorID: 2, Role: constants.RoleManager}, RequestsAdmin, false},
		{"менеджер работает с чужой заявкой", Context{ActorID: 2, Role: constants.RoleManager, Target: foreign}, RequestsWork, true},
		{"инженер работает со своей", Context{ActorID: 7, Role: constants.RoleEngineer, Target: own}, RequestsWork, true},
		{"инженер не трогает чужую", Context{ActorID: 7, Role: constants.RoleEngineer, Target: foreign}, RequestsWork, false},
		{"инженер не трогает неназначенную", Context{ActorID: 7, Role: constants.RoleEngineer, Target: unassigned}, RequestsWork, false},
		{"инженер не отменяет", Context{ActorID: 7, Role: constants.RoleEngineer, Target: own}, RequestsCancel, false},
		{"неизвестная роль", Context{ActorID: 9, Role: "guest"}, RequestsView, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.Can(tc.ctx, tc.permission))
		})
	}
}
