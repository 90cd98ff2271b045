package warehouse

import "fmt"

// schemaDDL renders the star schema for a dialect: seven dimension/bridge
// tables and one fact table, every one keyed by a surrogate integer id.
//
// Natural keys carry UNIQUE constraints (dim_date.date, dim_country.country,
// dim_language.language, dim_genre.genre, dim_movie.name and the composite
// (role_name, role_type) on dim_role). dim_crew deliberately has none: the
// source data can carry the same person under differing casing/spacing, and
// the loader dedupes only by exact name lookup.
func schemaDDL(d Dialect) []string {
	return []string{
		d.CreateTable("dim_date", fmt.Sprintf(
			"%s,\n  date %s NOT NULL,\n  year INTEGER NOT NULL,\n  month INTEGER NOT NULL,\n  day INTEGER NOT NULL,\n  quarter INTEGER NOT NULL,\n  CONSTRAINT uq_dim_date_date UNIQUE (date)",
			d.SerialPK("date_id"), d.DateType(),
		)),

		d.CreateTable("dim_country", fmt.Sprintf(
			"%s,\n  country %s NOT NULL,\n  CONSTRAINT uq_dim_country_country UNIQUE (country)",
			d.SerialPK("country_id"), d.KeyTextType(),
		)),

		d.CreateTable("dim_language", fmt.Sprintf(
			"%s,\n  language %s NOT NULL,\n  CONSTRAINT uq_dim_language_language UNIQUE (language)",
			d.SerialPK("language_id"), d.KeyTextType(),
		)),

		d.CreateTable("dim_genre", fmt.Sprintf(
			"%s,\n  genre %s NOT NULL,\n  CONSTRAINT uq_dim_genre_genre UNIQUE (genre)",
			d.SerialPK("genre_id"), d.KeyTextType(),
		)),

		d.CreateTable("dim_crew", fmt.Sprintf(
			"%s,\n  name %s NOT NULL",
			d.SerialPK("crew_id"), d.KeyTextType(),
		)),

		d.CreateTable("dim_role", fmt.Sprintf(
			"%s,\n  role_name %s NOT NULL,\n  role_type %s NOT NULL,\n  CONSTRAINT uq_dim_role_name_type UNIQUE (role_name, role_type)",
			d.SerialPK("role_id"), d.KeyTextType(), d.KeyTextType(),
		)),

		d.CreateTable("dim_movie", fmt.Sprintf(
			"%s,\n  name %s NOT NULL,\n  orig_title %s NOT NULL,\n  overview %s NOT NULL,\n  status %s NOT NULL,\n  date_id BIGINT NOT NULL REFERENCES dim_date (date_id),\n  is_deleted %s NOT NULL,\n  CONSTRAINT uq_dim_movie_name UNIQUE (name)",
			d.SerialPK("movie_id"), d.KeyTextType(), d.TextType(), d.TextType(), d.TextType(), d.BoolType(),
		)),

		d.CreateTable("bridge_movie_genre", fmt.Sprintf(
			"%s,\n  movie_id BIGINT NOT NULL REFERENCES dim_movie (movie_id),\n  genre_id BIGINT NOT NULL REFERENCES dim_genre (genre_id)",
			d.SerialPK("movie_genre_id"),
		)),

		d.CreateTable("bridge_movie_crew", fmt.Sprintf(
			"%s,\n  movie_id BIGINT NOT NULL REFERENCES dim_movie (movie_id),\n  crew_id BIGINT NOT NULL REFERENCES dim_crew (crew_id),\n  role_id BIGINT NOT NULL REFERENCES dim_role (role_id),\n  character_name %s",
			d.SerialPK("movie_crew_id"), d.TextType(),
		)),

		d.CreateTable("fact_movie_performance", fmt.Sprintf(
			"%s,\n  movie_id BIGINT NOT NULL REFERENCES dim_movie (movie_id),\n  date_id BIGINT NOT NULL REFERENCES dim_date (date_id),\n  country_id BIGINT NOT NULL REFERENCES dim_country (country_id),\n  language_id BIGINT NOT NULL REFERENCES dim_language (language_id),\n  budget %s NOT NULL,\n  revenue %s NOT NULL,\n  score %s NOT NULL,\n  profit %s NOT NULL",
			d.SerialPK("movie_performance_id"), d.FloatType(), d.FloatType(), d.FloatType(), d.FloatType(),
		)),
	}
}
