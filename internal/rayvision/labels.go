package rayvision

import "context"

// Label is a project label used to group tasks.
type Label struct {
	ID   int64  `json:"projectId"`
	Name string `json:"projectName"`
}

// AddLabel creates a label. Status is 0 or 1; the server default is 1.
func AddLabel(ctx context.Context, p Poster, name string, status int) error {
	_, err := p.Post(ctx, PathAddLabel, map[string]any{
		"newName": name,
		"status":  status,
	})
	return err
}

// DeleteLabel removes a label by name.
func DeleteLabel(ctx context.Context, p Poster, name string) error {
	_, err := p.Post(ctx, PathDeleteLabel, map[string]any{"delName": name})
	return err
}

// Labels lists the existing labels.
func Labels(ctx context.Context, p Poster) ([]Label, error) {
	list, err := PostAs[struct {
		Projects []Label `json:"projectNameList"`
	}](ctx, p, PathGetLabelList, nil, SkipValidation())
	if err != nil {
		return nil, err
	}
	return list.Projects, nil
}
