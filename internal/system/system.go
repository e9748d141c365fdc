package system

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// ViewerCommand возвращает префикс команды, открывающей файл в системном
// просмотрщике изображений для goos. Путь к файлу добавляет вызывающий.
func ViewerCommand(goos string) ([]string, error) {
	candidates := map[string][][]string{
		"darwin":  {{"open", "-W"}, {"open"}},
		"windows": {{"rundll32", "url.dll,FileProtocolHandler"}},
		"linux":   {{"xdg-open"}, {"display"}, {"eog"}},
		"freebsd": {{"xdg-open"}},
	}

	list, ok := candidates[goos]
	if !ok {
		return nil, fmt.Errorf("no image viewer known for %s", goos)
	}
	for _, argv := range list {
		if _, err := exec.LookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, fmt.Errorf("no image viewer found in PATH (tried %v)", list)
}

// DefaultViewerCommand определяет просмотрщик для текущей ОС.
func DefaultViewerCommand() ([]string, error) {
	return ViewerCommand(runtime.GOOS)
}

// MemoryReport форматирует использование памяти для стартового баннера.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("memory: unavailable (%v)", err)
	}
	return fmt.Sprintf("memory: %.1f/%.1f GiB used (%.0f%%)",
		float64(vm.Used)/(1<<30), float64(vm.Total)/(1<<30), vm.UsedPercent)
}
