package vision

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Рантайм ONNX инициализируется один раз на процесс.
var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

func initORTEnvironment() error {
	ortEnvOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		} else {
			ort.SetSharedLibraryPath(defaultSharedLibPath())
		}
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// defaultSharedLibPath подбирает путь к библиотеке onnxruntime под платформу.
func defaultSharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		return "third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "third_party/libonnxruntime_arm64.so"
		}
		return "third_party/libonnxruntime.so"
	}
}

// ortSession сессия onnxruntime с известными именами входа и выхода.
type ortSession struct {
	sess       *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	inW, inH   int
	shapeKnown bool
}

// openORTSession открывает модель и вычитывает форму входа из метаданных.
// Вход ранга 4 трактуется как [batch=1, channels=3, height, width];
// динамические оси оставляют форму неизвестной, и детектор берёт 640×640.
func openORTSession(modelPath string) (inferenceSession, error) {
	if err := initORTEnvironment(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", modelPath)
	}
	in, out := inputs[0], outputs[0]

	var inW, inH int
	shapeKnown := false
	if dims := in.Dimensions; len(dims) == 4 && dims[2] > 0 && dims[3] > 0 {
		inH, inW = int(dims[2]), int(dims[3])
		shapeKnown = true
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()
	// один поток на сессию: параллелизм живёт уровнем выше
	if err := opts.SetIntraOpNumThreads(1); err != nil {
		return nil, err
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, err
	}

	sess, err := ort.NewDynamicAdvancedSession(modelPath, []string{in.Name}, []string{out.Name}, opts)
	if err != nil {
		return nil, err
	}
	return &ortSession{
		sess:       sess,
		inputName:  in.Name,
		outputName: out.Name,
		inW:        inW,
		inH:        inH,
		shapeKnown: shapeKnown,
	}, nil
}

func (s *ortSession) inputShape() (int, int, bool) {
	return s.inW, s.inH, s.shapeKnown
}

// run выполняет один проход модели. Сам прогон рантайма прервать нельзя,
// поэтому отмена проверяется до и после него.
func (s *ortSession) run(ctx context.Context, input []float32, width, height int) ([]float32, []int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	inTensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(height), int64(width)), input)
	if err != nil {
		return nil, nil, err
	}
	defer inTensor.Destroy()

	outputs := []ort.Value{nil} // рантайм сам выделит выходной тензор
	if err := s.sess.Run([]ort.Value{inTensor}, outputs); err != nil {
		return nil, nil, err
	}
	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
		return nil, nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer outTensor.Destroy()

	shape := append([]int64(nil), outTensor.GetShape()...)
	data := append([]float32(nil), outTensor.GetData()...)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return data, shape, nil
}

func (s *ortSession) destroy() {
	_ = s.sess.Destroy()
}
