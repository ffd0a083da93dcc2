package vector

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/nci/pointdrill/sampler"
	"github.com/nci/pointdrill/utils"
)

// QueryPoints reads sampling coordinates from Postgres. The query must
// return x and y as its first two columns, already in the raster's
// reference system (e.g. select st_x(geom), st_y(geom) from sites
// order by id). Row order defines the point sequence.
func QueryPoints(connStr, query string) ([]sampler.Point, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: opening postgres: %v", utils.ErrIO, err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: point query failed: %v", utils.ErrIO, err)
	}
	defer rows.Close()

	var points []sampler.Point
	for rows.Next() {
		var x, y float64
		if err = rows.Scan(&x, &y); err != nil {
			return nil, fmt.Errorf("%w: point query row %d: %v", utils.ErrIO, len(points), err)
		}
		points = append(points, sampler.Point{X: x, Y: y})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: point query: %v", utils.ErrIO, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: point query returned no rows", utils.ErrInvalidOption)
	}
	return points, nil
}
