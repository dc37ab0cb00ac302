package registry

import "fmt"

// statements holds the three SQL texts a Core issues against the
// caller-provisioned table, built once at construction time from
// validated identifiers.
type statements struct {
	lookup      string
	insert      string
	batchInsert string
}

// buildStatements interpolates table/column identifiers into SQL text.
// Safe only because Config.validateIdentifiers has already rejected
// anything that isn't [A-Za-z_][A-Za-z0-9_]* with length <= 63; the
// JSON payload itself always travels as a bound parameter, never
// interpolated.
func buildStatements(cfg *Config) *statements {
	lookup := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1::jsonb",
		cfg.IDCol, cfg.Table, cfg.DataCol,
	)

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1::jsonb) ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s RETURNING %s",
		cfg.Table, cfg.DataCol, cfg.DataCol, cfg.DataCol, cfg.DataCol, cfg.IDCol,
	)

	// unnest($1::text[]) WITH ORDINALITY pairs each input value with its
	// 1-based position. The CTE performs one INSERT ... ON CONFLICT ...
	// RETURNING for the distinct payloads; joining it back to the
	// unnested rows by jsonb equality (not by the canonicaliser's
	// approximation of it) is what lets (position, id) pairs be
	// reassembled authoritatively, since RETURNING alone cannot echo
	// back an input row number for a multi-row INSERT.
	// the parameter travels as text[] and each unnested element is cast
	// to jsonb inside the query (value::jsonb): pgx has no native jsonb[]
	// array encoder, and a text->jsonb cast exists.
	batchInsert := fmt.Sprintf(
		`WITH input_rows AS (
			SELECT value::jsonb AS %[2]s, ordinality AS position
			FROM unnest($1::text[]) WITH ORDINALITY AS t(value, ordinality)
		), inserted AS (
			INSERT INTO %[1]s (%[2]s)
			SELECT DISTINCT %[2]s FROM input_rows
			ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s
			RETURNING %[3]s, %[2]s
		)
		SELECT input_rows.position, inserted.%[3]s
		FROM input_rows
		JOIN inserted ON inserted.%[2]s = input_rows.%[2]s
		ORDER BY input_rows.position`,
		cfg.Table, cfg.DataCol, cfg.IDCol,
	)

	return &statements{
		lookup:      lookup,
		insert:      insert,
		batchInsert: batchInsert,
	}
}
