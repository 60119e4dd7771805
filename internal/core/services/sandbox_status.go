package services

import "github.com/bings/visallo/internal/core/domain"

// GetPropertySandboxStatuses classifies each property revision relative to the
// requesting workspace. The classification is a pure function of the revisions'
// visibility labels and the workspace id: it performs no mutation and is safe to
// call concurrently from any read path.
//
// A revision whose label does not mention the workspace is PUBLIC. A revision
// scoped to the workspace is PRIVATE, unless a public revision for the same
// (key, name) also exists, in which case the workspace holds an unpublished
// override of a public value and the status is PUBLIC_CHANGED.
func GetPropertySandboxStatuses(properties []domain.Property, workspaceID string) []domain.SandboxStatus {
	statuses := make([]domain.SandboxStatus, len(properties))
	for i, p := range properties {
		if p.Visibility.IsPublic() || !p.Visibility.HasWorkspace(workspaceID) {
			statuses[i] = domain.SandboxStatusPublic
		} else {
			statuses[i] = domain.SandboxStatusPrivate
		}
	}

	// Upgrade PRIVATE to PUBLIC_CHANGED where a public revision shadows the same
	// (key, name) coordinate. Classification is per property, not per element:
	// one element may hold public and private values under different keys.
	for i := range properties {
		if statuses[i] != domain.SandboxStatusPrivate {
			continue
		}
		for j := range properties {
			if i == j {
				continue
			}
			if properties[j].Key == properties[i].Key &&
				properties[j].Name == properties[i].Name &&
				statuses[j] == domain.SandboxStatusPublic {
				statuses[i] = domain.SandboxStatusPublicChanged
				break
			}
		}
	}
	return statuses
}

// GetPropertySandboxStatus classifies a single (key, name) revision in the
// context of all revisions on the element.
func GetPropertySandboxStatus(properties []domain.Property, property domain.Property, workspaceID string) domain.SandboxStatus {
	statuses := GetPropertySandboxStatuses(properties, workspaceID)
	for i := range properties {
		if properties[i].Key == property.Key &&
			properties[i].Name == property.Name &&
			properties[i].Visibility.Equal(property.Visibility) {
			return statuses[i]
		}
	}
	return domain.SandboxStatusPublic
}
