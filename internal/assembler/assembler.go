package assembler

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mediathek/internal/logging"
	"mediathek/internal/media/classify"
	"mediathek/internal/media/probe"
	"mediathek/internal/mediaset"
)

// ProbeFailure records a file excluded from grouping because probing failed.
type ProbeFailure struct {
	Path string
	Err  error
}

// DroppedGroup records a group that could not become a candidate.
type DroppedGroup struct {
	Title string
	Err   error
}

// Diagnostics collects the non-fatal findings of one assembly pass.
type Diagnostics struct {
	ScannedFiles  int
	ProbeFailures []ProbeFailure
	DroppedGroups []DroppedGroup
	Warnings      []string
}

// Assembler groups probed files into mediaset candidates.
type Assembler struct {
	prober *probe.Prober
	logger *slog.Logger
}

// New constructs an Assembler on top of a per-run prober.
func New(prober *probe.Prober, logger *slog.Logger) *Assembler {
	return &Assembler{
		prober: prober,
		logger: logging.WithComponent(logger, "assembler"),
	}
}

// Assemble scans the search roots (plus optional additional roots), probes
// every media file, and groups them into candidates. Probe failures and
// dropped groups land in the diagnostics, never in the error return; the
// error is reserved for scan-level failures.
func (a *Assembler) Assemble(ctx context.Context, searchDirs, additionalDirs []string) ([]*mediaset.Candidate, Diagnostics, error) {
	var diags Diagnostics

	roots := append(append([]string{}, searchDirs...), additionalDirs...)
	paths, err := ScanFiles(roots)
	if err != nil {
		return nil, diags, err
	}
	diags.ScannedFiles = len(paths)
	a.logger.Info("scan completed", logging.Int("files", len(paths)))

	type group struct {
		key    classify.Key
		videos []probe.ProbedFile
	}
	groups := map[string]*group{}
	var groupOrder []string
	var images []probe.ProbedFile

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}
		file, err := a.prober.Probe(ctx, path)
		if err != nil {
			diags.ProbeFailures = append(diags.ProbeFailures, ProbeFailure{Path: path, Err: err})
			a.logger.Warn("probe failed", logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		switch file.Kind {
		case probe.KindImage:
			images = append(images, file)
		case probe.KindVideo:
			key := classify.DeriveKey(file)
			if key.Title == "" {
				diags.Warnings = append(diags.Warnings, "no derivable title for "+path)
				continue
			}
			grp, ok := groups[key.Title]
			if !ok {
				grp = &group{key: key}
				groups[key.Title] = grp
				groupOrder = append(groupOrder, key.Title)
			}
			if key.ContentDate != "" && grp.key.ContentDate == "" {
				grp.key = key
			}
			grp.videos = append(grp.videos, file)
		}
	}

	var candidates []*mediaset.Candidate
	for _, title := range groupOrder {
		grp := groups[title]
		candidate, err := a.buildCandidate(grp.key, grp.videos, images)
		if err != nil {
			diags.DroppedGroups = append(diags.DroppedGroups, DroppedGroup{Title: title, Err: err})
			a.logger.Warn("group dropped", logging.String(logging.FieldMediaset, title), logging.Error(err))
			continue
		}
		diags.Warnings = append(diags.Warnings, candidate.Warnings...)
		candidates = append(candidates, candidate)
	}

	a.logger.Info("assembly completed",
		logging.Int("candidates", len(candidates)),
		logging.Int("probe_failures", len(diags.ProbeFailures)),
		logging.Int("dropped_groups", len(diags.DroppedGroups)))
	return candidates, diags, nil
}

func (a *Assembler) buildCandidate(key classify.Key, videos []probe.ProbedFile, images []probe.ProbedFile) (*mediaset.Candidate, error) {
	source, ok := electSource(videos)
	if !ok {
		return nil, &NoElectableSourceError{Title: key.Title}
	}

	candidate := &mediaset.Candidate{Key: key, Source: source}
	candidate.Year = strconv.Itoa(key.ContentTime(source).Year())

	// One member per role; the largest file wins, the rest are shadowed.
	byRole := map[classify.Role][]probe.ProbedFile{}
	for _, file := range videos {
		role := classify.ClassifyVideo(file)
		byRole[role] = append(byRole[role], file)
	}
	roleOrder := []classify.Role{
		classify.RoleMaster, classify.RoleMedienserver, classify.RoleInternet4K,
		classify.RoleInternetHD, classify.RoleInternetSD, classify.RoleUnknown,
	}
	for _, role := range roleOrder {
		files := byRole[role]
		if len(files) == 0 {
			continue
		}
		sortBySizeDesc(files)
		if role == classify.RoleUnknown {
			for _, file := range files {
				candidate.Warnings = append(candidate.Warnings,
					"unclassifiable video "+file.Path)
			}
			continue
		}
		candidate.Members = append(candidate.Members, mediaset.Member{File: files[0], Role: role})
		for _, shadowed := range files[1:] {
			candidate.Shadowed = append(candidate.Shadowed, mediaset.Member{File: shadowed, Role: role})
		}
	}

	if poster, ok := matchPoster(key, images); ok {
		candidate.Members = append(candidate.Members, mediaset.Member{File: poster, Role: classify.RolePoster})
	} else {
		candidate.Warnings = append(candidate.Warnings, "no poster found for "+key.Title)
	}
	return candidate, nil
}

// electSource picks the metadata source: the largest .mov member, failing
// that the largest .mp4/.m4v member.
func electSource(videos []probe.ProbedFile) (probe.ProbedFile, bool) {
	var movs, mp4s []probe.ProbedFile
	for _, file := range videos {
		switch file.Container {
		case ".mov":
			movs = append(movs, file)
		case ".mp4", ".m4v":
			mp4s = append(mp4s, file)
		}
	}
	if len(movs) > 0 {
		sortBySizeDesc(movs)
		return movs[0], true
	}
	if len(mp4s) > 0 {
		sortBySizeDesc(mp4s)
		return mp4s[0], true
	}
	return probe.ProbedFile{}, false
}

// matchPoster finds an image whose stem begins with the group's full title
// or whose derived key matches. PNG wins over JPEG; within one extension
// class the first match in traversal order wins.
func matchPoster(key classify.Key, images []probe.ProbedFile) (probe.ProbedFile, bool) {
	matches := func(file probe.ProbedFile) bool {
		stem := file.Stem()
		if key.FullTitle != "" && strings.HasPrefix(stem, key.FullTitle) {
			return true
		}
		return classify.DeriveKey(file).Title == key.Title
	}
	var pngs, jpegs []probe.ProbedFile
	for _, file := range images {
		if !matches(file) {
			continue
		}
		switch file.Container {
		case ".png":
			pngs = append(pngs, file)
		case ".jpg", ".jpeg":
			jpegs = append(jpegs, file)
		}
	}
	if len(pngs) > 0 {
		return pngs[0], true
	}
	if len(jpegs) > 0 {
		return jpegs[0], true
	}
	return probe.ProbedFile{}, false
}

// SortCandidates orders candidates by year then title for stable output.
func SortCandidates(candidates []*mediaset.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Year != candidates[j].Year {
			return candidates[i].Year < candidates[j].Year
		}
		return candidates[i].Key.Title < candidates[j].Key.Title
	})
}

// Describe renders a one-line summary of a candidate for logs.
func Describe(candidate *mediaset.Candidate) string {
	parts := make([]string, 0, len(candidate.Members)+1)
	for _, member := range candidate.Members {
		parts = append(parts, member.Role.String()+"="+filepath.Base(member.File.Path))
	}
	return candidate.DirName() + " [" + strings.Join(parts, " ") + "]"
}
