package renderer

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec3 vWorldPos;

void main() {
    vNormal = aNormal;
    vWorldPos = aPosition;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

// Cloth is two sided: the normal is flipped toward the viewer.
const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec3 vWorldPos;

uniform vec3 uColor;
uniform vec3 uLightDir;
uniform vec3 uEye;

out vec4 FragColor;

void main() {
    vec3 n = normalize(vNormal);
    vec3 toEye = normalize(uEye - vWorldPos);
    if (dot(n, toEye) < 0.0) {
        n = -n;
    }
    float diffuse = max(dot(n, uLightDir), 0.0);
    vec3 color = uColor * (0.25 + 0.75 * diffuse);
    FragColor = vec4(color, 1.0);
}
`

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uViewProj;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec3 uColor;

out vec4 FragColor;

void main() {
    FragColor = vec4(uColor, 1.0);
}
`
