package engine

import (
	"math"
	"sync"
	"time"

	"github.com/annel0/voxelworld/internal/vec"
)

// StaticCamera - неподвижная камера
type StaticCamera vec.Vec3Float

// Position возвращает позицию камеры
func (c StaticCamera) Position() vec.Vec3Float {
	return vec.Vec3Float(c)
}

// OrbitCamera движется по окружности вокруг точки с постоянной угловой скоростью.
// Используется безголовым хостом вместо управления с клавиатуры.
type OrbitCamera struct {
	Center vec.Vec3Float
	Radius float64
	Speed  float64 // радиан в секунду

	mu    sync.Mutex
	start time.Time
	now   func() time.Time
}

// NewOrbitCamera создаёт камеру, начинающую движение сейчас
func NewOrbitCamera(center vec.Vec3Float, radius, speed float64) *OrbitCamera {
	return &OrbitCamera{
		Center: center,
		Radius: radius,
		Speed:  speed,
		start:  time.Now(),
		now:    time.Now,
	}
}

// Position возвращает текущую точку орбиты
func (c *OrbitCamera) Position() vec.Vec3Float {
	c.mu.Lock()
	elapsed := c.now().Sub(c.start).Seconds()
	c.mu.Unlock()

	angle := elapsed * c.Speed
	return c.Center.Add(vec.Vec3Float{
		X: math.Cos(angle) * c.Radius,
		Z: math.Sin(angle) * c.Radius,
	})
}
