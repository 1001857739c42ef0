package app

import (
	"io"

	"github.com/vk/pipesgo/internal/pipe"
	"github.com/vk/pipesgo/modules/env_vars"
	"github.com/vk/pipesgo/modules/http_client"
	"github.com/vk/pipesgo/modules/postgres"
	"github.com/vk/pipesgo/modules/print"
	"github.com/vk/pipesgo/modules/s3"
	"github.com/vk/pipesgo/modules/socketio"
)

// CoreModules is the definitive list of all modules that are compiled into
// the pipes binary. print writes to outW.
func CoreModules(outW io.Writer) []pipe.Module {
	return []pipe.Module{
		&env_vars.Module{},
		&print.Module{Out: outW},
		&http_client.Module{},
		&s3.Module{},
		&socketio.Module{},
		&postgres.Module{},
	}
}
