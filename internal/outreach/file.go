// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Entry is one company of the prospects file together with the recorded responses of the
// collaborators.
type Entry struct {
	Company string `yaml:"company"`
	// Include defaults to true.
	Include *bool `yaml:"include"`
	// SendPersonal selects the personal address of the decision maker. It defaults to false.
	SendPersonal bool `yaml:"send_personal"`
	// SendGeneric selects the shared company address. It defaults to true.
	SendGeneric *bool `yaml:"send_generic"`
	// Research is the raw resolver response.
	Research string `yaml:"research"`
	// Draft is the raw compiler response. Without one the message templates are used.
	Draft string `yaml:"draft"`
}

// Included reports whether the company is part of the next batch.
func (e Entry) Included() bool {
	return e.Include == nil || *e.Include
}

// Generic reports whether the shared company address is a recipient.
func (e Entry) Generic() bool {
	return e.SendGeneric == nil || *e.SendGeneric
}

// ProspectFile is the input of the batch planner.
type ProspectFile struct {
	Entries []Entry `yaml:"prospects"`
}

// ReadProspectFile reads and validates a prospects file.
func ReadProspectFile(fs afero.Fs, filename string) (*ProspectFile, error) {
	content, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, err
	}

	var file ProspectFile

	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("prospects file %q: %w", filename, err)
	}

	for i, entry := range file.Entries {
		if strings.TrimSpace(entry.Company) == "" {
			return nil, fmt.Errorf("prospects file %q: entry %d has no company", filename, i+1)
		}

		file.Entries[i].Company = strings.TrimSpace(entry.Company)
	}

	return &file, nil
}

// Resolver produces the research record of a company. A malformed response fails with a
// *ParseError.
type Resolver interface {
	Resolve(ctx context.Context, entry Entry) (*Prospect, error)
}

// FileResolver resolves companies using the research responses recorded in the prospects file.
type FileResolver struct{}

// NewFileResolver creates a new FileResolver.
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

func (*FileResolver) Resolve(ctx context.Context, entry Entry) (*Prospect, error) {
	return DecodeProspect(entry.Company, entry.Research)
}
