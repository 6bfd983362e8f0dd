package template

import "questlog/internal/model"

// RelaxLibrary returns the built-in relax templates. They never
// auto-generate; the user picks them up manually when the day allows it.
func RelaxLibrary() []model.RecurrenceTemplate {
	return []model.RecurrenceTemplate{
		{
			Name:       "Take a walk",
			Difficulty: "1",
			Kind:       model.KindRelax,
			Active:     true,
		},
		{
			Name:       "Read for fun",
			Difficulty: "1",
			Kind:       model.KindRelax,
			Active:     true,
		},
		{
			Name:       "Stretch break",
			Difficulty: "1",
			Kind:       model.KindRelax,
			Active:     true,
		},
		{
			Name:       "Call a friend",
			Difficulty: "2",
			Kind:       model.KindRelax,
			Active:     true,
		},
	}
}

// EnsureRelaxLibrary seeds the relax templates for a user that has none
// yet. Safe to call on every list.
func EnsureRelaxLibrary(repo Repo) error {
	existing, err := repo.List(ListFilter{Kind: model.KindRelax})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range RelaxLibrary() {
		if _, err := repo.Create(t); err != nil {
			return err
		}
	}
	return nil
}
