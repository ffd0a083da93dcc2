// Package aligner reconciles the spatial reference systems of the point
// file and the raster before sampling. Reprojection itself is delegated
// to the GDAL command line tools; the sampling core only ever sees
// aligned inputs.
package aligner

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nci/pointdrill/utils"
)

// CoordinateAligner hands back point and raster paths whose coordinates
// agree. Implementations may rewrite either side to new files.
type CoordinateAligner interface {
	Align(ctx context.Context, pointsPath, rasterPath string) (string, string, error)
	Cleanup()
}

// NoopAligner passes the inputs through untouched, used when both SRS
// match or either side is unknown.
type NoopAligner struct{}

func (NoopAligner) Align(ctx context.Context, pointsPath, rasterPath string) (string, string, error) {
	return pointsPath, rasterPath, nil
}

func (NoopAligner) Cleanup() {}

// CmdAligner shells out to ogr2ogr or gdalwarp. Match selects which
// side keeps its SRS: "raster" reprojects the points, "points" warps
// the raster into a temporary file that Cleanup removes.
type CmdAligner struct {
	Match     string
	PointSRS  string
	RasterSRS string
	Verbose   bool
	tempFile  string
}

// New picks an aligner for the given SRS pair. Unknown or matching
// systems need no external call.
func New(match, pointSRS, rasterSRS string, verbose bool) (CoordinateAligner, error) {
	if match != "raster" && match != "points" {
		return nil, fmt.Errorf("%w: crs must be 'raster' or 'points', got %q", utils.ErrInvalidOption, match)
	}
	if len(pointSRS) == 0 || len(rasterSRS) == 0 || strings.EqualFold(pointSRS, rasterSRS) {
		return NoopAligner{}, nil
	}
	return &CmdAligner{Match: match, PointSRS: pointSRS, RasterSRS: rasterSRS, Verbose: verbose}, nil
}

func (ca *CmdAligner) Align(ctx context.Context, pointsPath, rasterPath string) (string, string, error) {
	if ca.Match == "raster" {
		projPath := strings.TrimSuffix(pointsPath, filepath.Ext(pointsPath)) + "_projected.json"
		log.Printf("Warning: need to re-project points! New output dataset will be %s", projPath)

		args := pointsCmdArgs(ca.RasterSRS, projPath, pointsPath)
		if err := ca.run(ctx, "ogr2ogr", args); err != nil {
			return "", "", err
		}
		return projPath, rasterPath, nil
	}

	tempRaster := strings.TrimSuffix(rasterPath, filepath.Ext(rasterPath)) + "_projected.tif"
	args := rasterCmdArgs(ca.PointSRS, rasterPath, tempRaster)
	if err := ca.run(ctx, "gdalwarp", args); err != nil {
		return "", "", err
	}
	ca.tempFile = tempRaster
	return pointsPath, tempRaster, nil
}

// Cleanup removes the temporary warped raster, mirroring the reference
// tool which never keeps the projected raster around.
func (ca *CmdAligner) Cleanup() {
	if len(ca.tempFile) > 0 {
		os.Remove(ca.tempFile)
		ca.tempFile = ""
	}
}

func (ca *CmdAligner) run(ctx context.Context, binary string, args []string) error {
	if ca.Verbose {
		log.Printf("Aligner: %s %s", binary, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s failed: %v, output: %s", utils.ErrIO, binary, err, output)
	}
	return nil
}

func pointsCmdArgs(targetSRS, dst, src string) []string {
	return []string{"-overwrite", "-f", "GeoJSON", "-t_srs", targetSRS, dst, src}
}

func rasterCmdArgs(targetSRS, src, dst string) []string {
	return []string{"-of", "GTiff", "-overwrite", "-t_srs", targetSRS, src, dst}
}
