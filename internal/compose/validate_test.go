package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFile() *File {
	return &File{
		Services: map[string]Service{
			"db": {
				Image:   "postgres:14-alpine",
				Restart: "always",
				Ports:   []string{"5433:5432"},
				Volumes: []string{"pgdata:/var/lib/postgresql/data"},
			},
			"pgadmin": {
				Image:     "dpage/pgadmin4:8",
				Ports:     []string{"5050:80"},
				DependsOn: []string{"db"},
			},
		},
		Volumes: map[string]Volume{"pgdata": {}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*File)
		wantErr string
	}{
		{
			name:   "valid file",
			mutate: func(f *File) {},
		},
		{
			name:    "no services",
			mutate:  func(f *File) { f.Services = nil },
			wantErr: "no services defined",
		},
		{
			name: "missing image",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Image = ""
				f.Services["db"] = s
			},
			wantErr: `service "db": image is required`,
		},
		{
			name: "bad restart policy",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Restart = "sometimes"
				f.Services["db"] = s
			},
			wantErr: "invalid restart policy",
		},
		{
			name: "bad port",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Ports = []string{"5433:notaport"}
				f.Services["db"] = s
			},
			wantErr: "not a valid port number",
		},
		{
			name: "undeclared named volume",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Volumes = []string{"missing:/var/lib/postgresql/data"}
				f.Services["db"] = s
			},
			wantErr: `undeclared named volume "missing"`,
		},
		{
			name: "relative container path",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Volumes = []string{"pgdata:data"}
				f.Services["db"] = s
			},
			wantErr: "is not absolute",
		},
		{
			name: "depends_on unknown service",
			mutate: func(f *File) {
				s := f.Services["pgadmin"]
				s.DependsOn = []string{"redis"}
				f.Services["pgadmin"] = s
			},
			wantErr: `depends_on references undefined service "redis"`,
		},
		{
			name: "depends_on self",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.DependsOn = []string{"db"}
				f.Services["db"] = s
			},
			wantErr: "references itself",
		},
		{
			name: "duplicate container_name",
			mutate: func(f *File) {
				db := f.Services["db"]
				db.ContainerName = "same"
				f.Services["db"] = db
				pgadmin := f.Services["pgadmin"]
				pgadmin.ContainerName = "same"
				f.Services["pgadmin"] = pgadmin
			},
			wantErr: `container_name "same" used by both`,
		},
		{
			name: "env var name with space",
			mutate: func(f *File) {
				s := f.Services["db"]
				s.Environment = Environment{"BAD NAME": "x"}
				f.Services["db"] = s
			},
			wantErr: "invalid environment variable name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFile()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParsePortMapping(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		expected PortMapping
		wantErr  string
	}{
		{
			name:     "host and container",
			entry:    "5433:5432",
			expected: PortMapping{HostPort: "5433", ContainerPort: "5432", Protocol: "tcp"},
		},
		{
			name:     "with host IP",
			entry:    "127.0.0.1:5050:80",
			expected: PortMapping{HostIP: "127.0.0.1", HostPort: "5050", ContainerPort: "80", Protocol: "tcp"},
		},
		{
			name:     "udp protocol",
			entry:    "5433:5432/udp",
			expected: PortMapping{HostPort: "5433", ContainerPort: "5432", Protocol: "udp"},
		},
		{name: "container only", entry: "5432", wantErr: "expected [ip:]host:container"},
		{name: "bad protocol", entry: "5433:5432/sctp", wantErr: "unknown protocol"},
		{name: "bad host IP", entry: "localhost:5050:80", wantErr: "invalid host IP"},
		{name: "port out of range", entry: "5433:70000", wantErr: "not a valid port number"},
		{name: "zero port", entry: "0:5432", wantErr: "not a valid port number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := ParsePortMapping(tt.entry)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mapping)
		})
	}
}
