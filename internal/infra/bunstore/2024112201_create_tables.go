package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				tables := []struct {
					model       interface{}
					foreignKeys []string
				}{
					{model: (*adminRow)(nil)},
					{model: (*quizRow)(nil)},
					{model: (*questionRow)(nil), foreignKeys: []string{`("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`}},
					{model: (*choiceRow)(nil), foreignKeys: []string{`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`}},
					{model: (*submissionRow)(nil), foreignKeys: []string{`("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`}},
					{model: (*answerRow)(nil), foreignKeys: []string{`("submission_id") REFERENCES "submissions" ("id") ON DELETE CASCADE`}},
				}
				for _, table := range tables {
					q := tx.NewCreateTable().Model(table.model).IfNotExists()
					for _, fk := range table.foreignKeys {
						q = q.ForeignKey(fk)
					}
					if _, err := q.Exec(ctx); err != nil {
						return fmt.Errorf("create table: %w", err)
					}
				}

				indexes := []struct {
					model   interface{}
					name    string
					columns []string
				}{
					{(*quizRow)(nil), "quizzes_owner_created_idx", []string{"owner_id", "created_at"}},
					{(*questionRow)(nil), "questions_quiz_position_idx", []string{"quiz_id", "position"}},
					{(*choiceRow)(nil), "choices_question_position_idx", []string{"question_id", "position"}},
					{(*submissionRow)(nil), "submissions_quiz_submitted_idx", []string{"quiz_id", "submitted_at"}},
				}
				for _, idx := range indexes {
					if _, err := tx.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("create index %s: %w", idx.name, err)
					}
				}
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			models := []interface{}{
				(*answerRow)(nil),
				(*submissionRow)(nil),
				(*choiceRow)(nil),
				(*questionRow)(nil),
				(*quizRow)(nil),
				(*adminRow)(nil),
			}
			for _, model := range models {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
